package resolve

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/perseus-framework/docker-perseus/internal/distro"
)

// fallback.yaml is the append-only historical record of every previously
// published release: one entry per release, keyed release tag → dependency
// name → distribution family. It is read-only input to the resolver.
//
//go:embed fallback.yaml
var embeddedFallback []byte

type fallbackRelease struct {
	// Channels records the distribution channel each family was published
	// against for this release. A family without a channel entry has no
	// fallback coverage.
	Channels     map[string]string            `yaml:"channels"`
	Dependencies map[string]map[string]string `yaml:"dependencies"`
}

type fallbackDoc struct {
	Releases map[string]fallbackRelease `yaml:"releases"`
}

// Fallback is the loaded static table. Lookups match the release tag
// exactly: a pre-release tag only ever matches an entry spelling out the
// same pre-release string, never a numeric prefix.
type Fallback struct {
	releases map[string]fallbackRelease
}

// DefaultFallback parses and validates the embedded historical record.
func DefaultFallback() (*Fallback, error) {
	return ParseFallback(embeddedFallback)
}

// LoadFallbackFile reads a fallback table from disk.
func LoadFallbackFile(path string) (*Fallback, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fallback table: %w", err)
	}
	return ParseFallback(raw)
}

// ParseFallback decodes a fallback document and validates it: every release
// must pin every required dependency for every family it declares a channel
// for. A table that passes validation can never produce a partial set.
func ParseFallback(raw []byte) (*Fallback, error) {
	var doc fallbackDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse fallback table: %w", err)
	}

	f := &Fallback{releases: doc.Releases}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Fallback) validate() error {
	for _, tag := range f.Tags() {
		entry := f.releases[tag]
		if _, err := NewRelease(tag); err != nil {
			return fmt.Errorf("fallback table: invalid release tag %q", tag)
		}
		for familyRaw := range entry.Channels {
			family, err := distro.Parse(familyRaw)
			if err != nil {
				return fmt.Errorf("fallback table: release %s: %w", tag, err)
			}
			for _, req := range RequiredFor(family) {
				byFamily, ok := entry.Dependencies[req.Name]
				if !ok {
					return fmt.Errorf("fallback table: release %s: missing dependency %q for %s", tag, req.Name, family)
				}
				if v := byFamily[string(family)]; v == "" {
					return fmt.Errorf("fallback table: release %s: dependency %q has no %s pin", tag, req.Name, family)
				}
			}
		}
	}
	return nil
}

// Tags returns the recorded release tags in lexical order.
func (f *Fallback) Tags() []string {
	tags := make([]string, 0, len(f.releases))
	for tag := range f.releases {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Version returns the recorded pin for (tag, dependency, family).
func (f *Fallback) Version(tag, dep string, family distro.Name) (string, bool) {
	entry, ok := f.releases[tag]
	if !ok {
		return "", false
	}
	byFamily, ok := entry.Dependencies[dep]
	if !ok {
		return "", false
	}
	v, ok := byFamily[string(family)]
	return v, ok && v != ""
}

// Channel returns the distribution channel the release was published
// against for the family.
func (f *Fallback) Channel(tag string, family distro.Name) (string, bool) {
	entry, ok := f.releases[tag]
	if !ok {
		return "", false
	}
	v, ok := entry.Channels[string(family)]
	return v, ok && v != ""
}
