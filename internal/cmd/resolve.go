package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/perseus-framework/docker-perseus/internal/config"
	"github.com/perseus-framework/docker-perseus/internal/distro"
	"github.com/perseus-framework/docker-perseus/internal/registry"
	"github.com/perseus-framework/docker-perseus/internal/resolve"
)

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the dependency sets for a release and write the lock file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := mergedOptions(cmd)
			if err != nil {
				return err
			}

			logger := newLogger(opts.Debug)
			sets, err := resolveSets(context.Background(), opts, logger)
			if err != nil {
				return err
			}

			target := lockPath(opts, sets[0].Release.Tag)
			if err := confirmWrite(cmd, opts.DangerousInline, target); err != nil {
				return err
			}
			if err := resolve.WriteLock(target, sets); err != nil {
				return err
			}

			fmt.Printf("Resolved %s for %d target(s)\nWrote lock file: %s\n", sets[0].Release.Tag, len(sets), target)
			return nil
		},
	}

	return cmd
}

// resolveSets runs the full resolution pipeline: release tag first ("latest"
// resolves against the framework's release registry), then one dependency
// set per requested family.
func resolveSets(ctx context.Context, opts runtimeOptions, logger *log.Logger) ([]*resolve.Set, error) {
	var client *registry.Client
	if !opts.Offline {
		client = registry.NewClient(config.DefaultEndpoints(), nil, logger)
	}

	fallback, err := resolve.DefaultFallback()
	if err != nil {
		return nil, err
	}

	tag := opts.Version
	if tag == "latest" {
		if client == nil {
			return nil, fmt.Errorf("cannot resolve 'latest' offline; pass an explicit release tag")
		}
		releaseTag, err := client.LatestReleaseTag(ctx, resolve.FrameworkRepo)
		if err != nil {
			return nil, fmt.Errorf("resolve latest framework release: %w", err)
		}
		tag = strings.TrimPrefix(strings.TrimSpace(releaseTag), "v")
		logger.Info("resolved latest framework release", "release", tag)
	}

	resolver := &resolve.Resolver{Client: client, Fallback: fallback, Logger: logger}

	sets := make([]*resolve.Set, 0, len(opts.Distributions))
	for _, raw := range opts.Distributions {
		family, err := distro.Parse(raw)
		if err != nil {
			return nil, err
		}

		set, err := resolver.Resolve(ctx, tag, distro.New(family, ""))
		if err != nil {
			return nil, fmt.Errorf("resolve %s on %s: %w", tag, family, err)
		}
		logger.Info("resolved dependency set",
			"release", tag, "distribution", family, "channel", set.Distribution.Channel, "dependencies", set.Len())
		sets = append(sets, set)
	}

	return sets, nil
}

func lockPath(opts runtimeOptions, tag string) string {
	if opts.LockFile != "" {
		return opts.LockFile
	}
	return filepath.Join(opts.OutputDir, tag, "dependencies.lock.json")
}
