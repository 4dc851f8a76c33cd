package resolve

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/perseus-framework/docker-perseus/internal/distro"
)

// The lock file is the audit side channel: it records the resolved set for
// every target of a release so manifests can be regenerated offline and
// diffs reviewed. Dependency order in the document is the set's
// enumeration order, keeping the file byte-stable across runs.

type lockDependency struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Source  string `json:"source"`
}

type lockTarget struct {
	Distribution string           `json:"distribution"`
	Channel      string           `json:"channel"`
	Dependencies []lockDependency `json:"dependencies"`
}

type lockDocument struct {
	Release string       `json:"release"`
	Targets []lockTarget `json:"targets"`
}

// WriteLock persists the resolved sets of one release.
func WriteLock(path string, sets []*Set) error {
	if len(sets) == 0 {
		return fmt.Errorf("no resolved sets to write")
	}

	doc := lockDocument{Release: sets[0].Release.Tag}
	for _, set := range sets {
		if set.Release.Tag != doc.Release {
			return fmt.Errorf("lock file cannot mix releases %s and %s", doc.Release, set.Release.Tag)
		}
		target := lockTarget{
			Distribution: string(set.Distribution.Name),
			Channel:      set.Distribution.Channel,
		}
		for _, dep := range set.All() {
			target.Dependencies = append(target.Dependencies, lockDependency{
				Name:    dep.Name,
				Version: dep.Version,
				Source:  dep.Source.String(),
			})
		}
		doc.Targets = append(doc.Targets, target)
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode lock file: %w", err)
	}
	payload = append(payload, '\n')

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("write lock file: %w", err)
	}

	return nil
}

// ReadLock reconstructs the resolved sets from a lock file.
func ReadLock(path string) ([]*Set, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lock file: %w", err)
	}

	var doc lockDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse lock file: %w", err)
	}

	release, err := NewRelease(doc.Release)
	if err != nil {
		return nil, fmt.Errorf("lock file: %w", err)
	}

	var sets []*Set
	for _, target := range doc.Targets {
		family, err := distro.Parse(target.Distribution)
		if err != nil {
			return nil, fmt.Errorf("lock file: %w", err)
		}

		set := newSet(release, distro.New(family, target.Channel))
		for _, dep := range target.Dependencies {
			kind, ok := sourceKindFromString(dep.Source)
			if !ok {
				return nil, fmt.Errorf("lock file: unknown source kind %q for %q", dep.Source, dep.Name)
			}
			set.put(Dependency{Name: dep.Name, Version: dep.Version, Source: kind})
		}
		sets = append(sets, set)
	}

	return sets, nil
}
