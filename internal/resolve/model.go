// Package resolve implements the dependency matrix: it maps a (release,
// distribution) pair to the complete pinned dependency set, live through the
// registry clients or through the static fallback table for previously
// published releases. Resolution fails closed: either every required
// dependency pins or the whole call errors.
package resolve

import (
	semver "github.com/Masterminds/semver/v3"

	"github.com/perseus-framework/docker-perseus/internal/distro"
)

// Release identifies one version of the framework being packaged.
// Immutable once constructed.
type Release struct {
	Tag        string
	Prerelease string
}

// NewRelease validates a release tag: three dot-separated numeric
// components with an optional pre-release suffix. Anything else is an
// *UnsupportedReleaseError.
func NewRelease(tag string) (Release, error) {
	v, err := semver.StrictNewVersion(tag)
	if err != nil {
		return Release{}, &UnsupportedReleaseError{Tag: tag}
	}
	return Release{Tag: tag, Prerelease: v.Prerelease()}, nil
}

// SourceKind classifies where a dependency's pinned version comes from.
type SourceKind int

const (
	// DistroPackage versions come from the family's package registry.
	DistroPackage SourceKind = iota
	// Toolchain versions come from the tool's own release registry and
	// install through a language package manager or bootstrap script.
	Toolchain
	// BinaryRelease versions come from the tool's release registry and
	// install as a prebuilt artifact in a dedicated build stage.
	BinaryRelease
)

func (k SourceKind) String() string {
	switch k {
	case DistroPackage:
		return "distro-package"
	case Toolchain:
		return "language-toolchain"
	case BinaryRelease:
		return "binary-release"
	}
	return "unknown"
}

func sourceKindFromString(s string) (SourceKind, bool) {
	switch s {
	case "distro-package":
		return DistroPackage, true
	case "language-toolchain":
		return Toolchain, true
	case "binary-release":
		return BinaryRelease, true
	}
	return 0, false
}

// Dependency is a single pinned package. Version is opaque: its format
// varies by distribution ("1.2.2-r7" for apk, a bare version elsewhere) and
// is embedded verbatim into install instructions.
type Dependency struct {
	Name    string
	Version string
	Source  SourceKind
}

// Set is the complete, ordered dependency collection for one
// (release, distribution) pair. Name is unique within the set; iteration
// follows the family's required-list enumeration order.
type Set struct {
	Release      Release
	Distribution distro.Distribution

	order []string
	deps  map[string]Dependency
}

func newSet(release Release, dist distro.Distribution) *Set {
	return &Set{
		Release:      release,
		Distribution: dist,
		deps:         make(map[string]Dependency),
	}
}

func (s *Set) put(d Dependency) {
	if _, ok := s.deps[d.Name]; !ok {
		s.order = append(s.order, d.Name)
	}
	s.deps[d.Name] = d
}

// Get returns the dependency pinned under name.
func (s *Set) Get(name string) (Dependency, bool) {
	d, ok := s.deps[name]
	return d, ok
}

// Names returns the member names in enumeration order.
func (s *Set) Names() []string {
	return append([]string(nil), s.order...)
}

// All returns the members in enumeration order.
func (s *Set) All() []Dependency {
	out := make([]Dependency, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.deps[name])
	}
	return out
}

// ByKind returns the members of one source kind, preserving order.
func (s *Set) ByKind(kind SourceKind) []Dependency {
	var out []Dependency
	for _, name := range s.order {
		if d := s.deps[name]; d.Source == kind {
			out = append(out, d)
		}
	}
	return out
}

// Len returns the member count.
func (s *Set) Len() int { return len(s.order) }
