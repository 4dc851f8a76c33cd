package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type githubRelease struct {
	TagName string `json:"tag_name"`
}

// LatestReleaseTag returns the tag of the newest release of a GitHub
// repository ("owner/name"). The releases API serves entries in reverse
// chronological order, so the first element is taken as latest; that
// ordering is a documented contract of the registry, not verified here.
func (c *Client) LatestReleaseTag(ctx context.Context, repo string) (string, error) {
	body, err := c.Fetch(ctx, Request{
		URL:         c.endpoints.GitHubAPI + repo + "/releases",
		ContentType: "application/json",
	})
	if err != nil {
		return "", err
	}

	var releases []githubRelease
	if err := json.Unmarshal([]byte(body), &releases); err != nil {
		return "", fmt.Errorf("decode releases for %s: %w", repo, err)
	}
	if len(releases) == 0 || strings.TrimSpace(releases[0].TagName) == "" {
		return "", fmt.Errorf("no releases published for %s", repo)
	}

	return releases[0].TagName, nil
}

// ChannelDescription fetches the Docker Hub repository descriptor for an
// official library image. The latest stable channel is embedded in the
// description text; extraction is the caller's concern.
func (c *Client) ChannelDescription(ctx context.Context, image string) (string, error) {
	return c.Fetch(ctx, Request{
		URL:         c.endpoints.DockerHub + image,
		ContentType: "application/json",
	})
}
