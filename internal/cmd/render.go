package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/perseus-framework/docker-perseus/internal/config"
	"github.com/perseus-framework/docker-perseus/internal/manifest"
	"github.com/perseus-framework/docker-perseus/internal/render"
	"github.com/perseus-framework/docker-perseus/internal/resolve"
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render Dockerfiles from an existing lock file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := mergedOptions(cmd)
			if err != nil {
				return err
			}

			if opts.LockFile == "" {
				return fmt.Errorf("render requires --lock-file (or lock_file in config)")
			}

			sets, err := resolve.ReadLock(opts.LockFile)
			if err != nil {
				return err
			}

			manifests, err := buildManifests(sets)
			if err != nil {
				return err
			}

			if err := render.Generate(render.Options{
				Manifests: manifests,
				OutputDir: opts.OutputDir,
				Cleanup:   opts.Cleanup,
				ConfirmWrite: func(path string) error {
					return confirmWrite(cmd, opts.DangerousInline, path)
				},
			}); err != nil {
				return err
			}

			fmt.Printf("Rendered Dockerfiles to %s\n", opts.OutputDir)
			return nil
		},
	}

	return cmd
}

func buildManifests(sets []*resolve.Set) ([]*manifest.Manifest, error) {
	generator := manifest.NewGenerator(config.DefaultEndpoints())

	manifests := make([]*manifest.Manifest, 0, len(sets))
	for _, set := range sets {
		m, err := generator.Generate(set)
		if err != nil {
			return nil, fmt.Errorf("generate manifest for %s: %w", set.Distribution.Name, err)
		}
		manifests = append(manifests, m)
	}

	return manifests, nil
}
