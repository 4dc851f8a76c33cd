// Package extract reduces raw registry responses to version strings using
// compiled patterns with named capture-group roles. Extraction is stateless;
// a non-match is always surfaced as a *PatternError, never swallowed.
package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// PatternError reports that a response was well-formed but the extraction
// pattern did not match it. This usually signals an upstream format change.
type PatternError struct {
	Rule   string
	Detail string
}

func (e *PatternError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("extraction rule %q did not match: %s", e.Rule, e.Detail)
	}
	return fmt.Sprintf("extraction rule %q did not match response", e.Rule)
}

// Rule is one compiled extraction pattern. Capture groups carry roles by
// name: "version" is mandatory, "name" and "release" are optional.
type Rule struct {
	// Name identifies the rule in diagnostics.
	Name string
	// Pattern is matched against the (optionally flattened) response body.
	Pattern *regexp.Regexp
	// Flatten replaces newlines with FlattenSep before matching. The
	// upstream patterns were written against single-line text.
	Flatten    bool
	FlattenSep string
	// ExpectName, when set, requires the "name" capture to equal it.
	ExpectName string
	// JoinSep concatenates the "version" and "release" captures into a
	// single opaque string. Only the alpine rule sets this: downstream
	// install instructions embed the joined string verbatim.
	JoinSep string
}

// Extract applies the rule to body and returns the normalized version
// string, or a *PatternError when the pattern does not match.
func (r Rule) Extract(body string) (string, error) {
	if r.Flatten {
		body = strings.ReplaceAll(strings.ReplaceAll(body, "\r\n", "\n"), "\n", r.FlattenSep)
	}

	match := r.Pattern.FindStringSubmatch(body)
	if match == nil {
		return "", &PatternError{Rule: r.Name}
	}

	version := r.group(match, "version")
	if version == "" {
		return "", &PatternError{Rule: r.Name, Detail: "empty version capture"}
	}

	if r.ExpectName != "" {
		name := r.group(match, "name")
		if name != r.ExpectName {
			return "", &PatternError{
				Rule:   r.Name,
				Detail: fmt.Sprintf("descriptor names package %q, expected %q", name, r.ExpectName),
			}
		}
	}

	if r.JoinSep != "" {
		release := r.group(match, "release")
		if release == "" {
			return "", &PatternError{Rule: r.Name, Detail: "empty release capture"}
		}
		version = version + r.JoinSep + release
	}

	return version, nil
}

func (r Rule) group(match []string, role string) string {
	idx := r.Pattern.SubexpIndex(role)
	if idx < 0 || idx >= len(match) {
		return ""
	}
	return match[idx]
}
