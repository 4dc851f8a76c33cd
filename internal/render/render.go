// Package render writes generated manifests to the output tree:
// <output>/<release>/<family><channel>/Dockerfile.
package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/perseus-framework/docker-perseus/internal/manifest"
)

type Options struct {
	Manifests []*manifest.Manifest
	OutputDir string
	// Cleanup removes release and variant directories that this run did not
	// produce.
	Cleanup bool
	// ConfirmWrite is invoked before overwriting an existing file. Nil means
	// writes proceed unconditionally.
	ConfirmWrite func(path string) error
}

// Generate serializes every manifest into the output tree. All manifests
// must belong to the same release.
func Generate(opts Options) error {
	if opts.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if len(opts.Manifests) == 0 {
		return fmt.Errorf("no manifests to render")
	}

	release := opts.Manifests[0].Set.Release.Tag
	for _, m := range opts.Manifests {
		if m.Set.Release.Tag != release {
			return fmt.Errorf("cannot render releases %s and %s together", release, m.Set.Release.Tag)
		}
	}

	releaseDir := filepath.Join(opts.OutputDir, release)
	if err := os.MkdirAll(releaseDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	written := make(map[string]struct{}, len(opts.Manifests))
	for _, m := range opts.Manifests {
		variant := variantName(m)
		target := filepath.Join(releaseDir, variant)
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("create output path %q: %w", target, err)
		}

		dockerfilePath := filepath.Join(target, "Dockerfile")
		if opts.ConfirmWrite != nil {
			if err := opts.ConfirmWrite(dockerfilePath); err != nil {
				return err
			}
		}
		if err := os.WriteFile(dockerfilePath, []byte(manifest.Serialize(m)), 0o644); err != nil {
			return fmt.Errorf("write dockerfile %q: %w", dockerfilePath, err)
		}
		written[variant] = struct{}{}
	}

	if opts.Cleanup {
		if err := cleanupObsolete(opts.OutputDir, map[string]struct{}{release: {}}); err != nil {
			return err
		}
		if err := cleanupObsolete(releaseDir, written); err != nil {
			return err
		}
	}

	return nil
}

// variantName is the per-target directory under the release: the family
// joined with its channel, e.g. "alpine3.16.2" or "debianbullseye".
func variantName(m *manifest.Manifest) string {
	dist := m.Set.Distribution
	return string(dist.Name) + dist.Channel
}

func cleanupObsolete(dir string, keep map[string]struct{}) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read output directory for cleanup: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, ok := keep[entry.Name()]; ok {
			continue
		}

		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("remove obsolete output dir %q: %w", entry.Name(), err)
		}
	}

	return nil
}
