package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/perseus-framework/docker-perseus/internal/render"
	"github.com/perseus-framework/docker-perseus/internal/resolve"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Resolve dependency sets and generate Dockerfiles",
		RunE:  runGenerate,
	}

	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	opts, err := mergedOptions(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(opts.Debug)

	var sets []*resolve.Set

	// An explicit lock file that already exists is reused instead of
	// resolving again, unless the release was explicitly requested.
	if opts.LockFile != "" && !cmd.Flags().Changed("release") {
		if _, err := os.Stat(opts.LockFile); err == nil {
			sets, err = resolve.ReadLock(opts.LockFile)
			if err != nil {
				return err
			}
			logger.Info("reusing lock file", "path", opts.LockFile)
		}
	}

	if len(sets) == 0 {
		sets, err = resolveSets(context.Background(), opts, logger)
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

	fmt.Printf("Generated Dockerfiles for %s in %s\n", sets[0].Release.Tag, opts.OutputDir)
	return nil
}
