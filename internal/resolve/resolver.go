package resolve

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/perseus-framework/docker-perseus/internal/distro"
	"github.com/perseus-framework/docker-perseus/internal/extract"
	"github.com/perseus-framework/docker-perseus/internal/registry"
)

// Resolver maps a (release, distribution) pair to its pinned dependency
// set. Resolution is synchronous and sequential: one blocking registry
// round-trip per dependency, in enumeration order. Each call owns its Set,
// and the fallback table is read-only, so independent calls are safe to run
// concurrently if a caller chooses to.
type Resolver struct {
	// Client performs live registry lookups. Nil disables live resolution
	// entirely; every dependency then pins from the fallback table.
	Client *registry.Client
	// Fallback is consulted per dependency after a live failure. Nil means
	// live failures escalate immediately.
	Fallback *Fallback
	Logger   *log.Logger
}

// Resolve builds the dependency set for the release tag on the given
// distribution. The set's key set always equals the family's required list
// exactly; any dependency that pins neither live nor from the fallback
// table aborts the call with *UnresolvedError.
func (r *Resolver) Resolve(ctx context.Context, tag string, dist distro.Distribution) (*Set, error) {
	logger := r.Logger
	if logger == nil {
		logger = log.Default()
	}

	release, err := NewRelease(tag)
	if err != nil {
		return nil, err
	}

	dist, err = r.resolveChannel(ctx, logger, release, dist)
	if err != nil {
		return nil, err
	}

	set := newSet(release, dist)
	for _, req := range RequiredFor(dist.Name) {
		version, liveErr := r.resolveLive(ctx, dist, req)
		if liveErr != nil {
			logger.Debug("live resolution failed, consulting fallback table",
				"dependency", req.Name, "distribution", dist.Name, "err", liveErr)
			v, ok := r.fallbackVersion(release.Tag, req.Name, dist.Name)
			if !ok {
				return nil, &UnresolvedError{Name: req.Name, Cause: liveErr}
			}
			version = v
		}
		logger.Debug("pinned dependency",
			"dependency", req.Name, "version", version, "source", req.Source.String())
		set.put(Dependency{Name: req.Name, Version: version, Source: req.Source})
	}

	return set, nil
}

// resolveChannel fills in the distribution channel when the caller left it
// empty: live from the image registry description, then from the fallback
// record of the release.
func (r *Resolver) resolveChannel(ctx context.Context, logger *log.Logger, release Release, dist distro.Distribution) (distro.Distribution, error) {
	if dist.Channel != "" {
		return dist, nil
	}

	channel, liveErr := r.liveChannel(ctx, dist)
	if liveErr != nil {
		logger.Debug("live channel lookup failed, consulting fallback table",
			"distribution", dist.Name, "err", liveErr)
		v, ok := "", false
		if r.Fallback != nil {
			v, ok = r.Fallback.Channel(release.Tag, dist.Name)
		}
		if !ok {
			return dist, &UnresolvedError{Name: string(dist.Name) + " channel", Cause: liveErr}
		}
		channel = v
	}

	return distro.New(dist.Name, channel), nil
}

func (r *Resolver) liveChannel(ctx context.Context, dist distro.Distribution) (string, error) {
	if r.Client == nil {
		return "", errLiveDisabled
	}

	rule, ok := extract.ChannelRule(dist.Name)
	if !ok {
		return "", fmt.Errorf("no channel rule for %s", dist.Name)
	}

	body, err := r.Client.ChannelDescription(ctx, dist.ImageName())
	if err != nil {
		return "", err
	}
	return rule.Extract(body)
}

func (r *Resolver) resolveLive(ctx context.Context, dist distro.Distribution, req Requirement) (string, error) {
	if r.Client == nil {
		return "", errLiveDisabled
	}

	if req.Source == DistroPackage {
		strategy, ok := registry.PackageStrategyFor(dist.Name)
		if !ok {
			return "", fmt.Errorf("no package registry strategy for %s", dist.Name)
		}

		request, err := strategy.Request(r.Client.Endpoints(), dist.Channel, req.Name)
		if err != nil {
			return "", err
		}
		body, err := r.Client.Fetch(ctx, request)
		if err != nil {
			return "", err
		}
		return strategy.Rule(dist.Channel, req.Name).Extract(body)
	}

	// Toolchain and binary dependencies pin against their own release
	// registry; live resolution tracks the newest published tag.
	repo, ok := ReleaseRepo(req.Name)
	if !ok {
		return "", fmt.Errorf("no release registry for %q", req.Name)
	}
	releaseTag, err := r.Client.LatestReleaseTag(ctx, repo)
	if err != nil {
		return "", err
	}
	return normalizeReleaseTag(releaseTag), nil
}

func (r *Resolver) fallbackVersion(tag, dep string, family distro.Name) (string, bool) {
	if r.Fallback == nil {
		return "", false
	}
	return r.Fallback.Version(tag, dep, family)
}

type liveDisabledError struct{}

func (liveDisabledError) Error() string { return "live resolution disabled" }

var errLiveDisabled = liveDisabledError{}
