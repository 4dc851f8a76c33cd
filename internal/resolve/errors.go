package resolve

import "fmt"

// UnsupportedReleaseError reports a release tag outside every known range:
// not three dot-separated numeric components with an optional pre-release
// suffix.
type UnsupportedReleaseError struct {
	Tag string
}

func (e *UnsupportedReleaseError) Error() string {
	return fmt.Sprintf("unsupported release tag %q", e.Tag)
}

// UnresolvedError reports the dependency that could not be pinned and the
// data source that failed. Any single unresolved dependency aborts the
// whole resolution; no partial sets are ever returned.
type UnresolvedError struct {
	Name string
	// Cause is the live-resolution failure, nil when live resolution was
	// skipped.
	Cause error
}

func (e *UnresolvedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("dependency %q unresolved: no fallback entry after live failure: %v", e.Name, e.Cause)
	}
	return fmt.Sprintf("dependency %q unresolved: no fallback entry", e.Name)
}

func (e *UnresolvedError) Unwrap() error { return e.Cause }
