package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perseus-framework/docker-perseus/internal/distro"
)

func TestDefaultFallbackParsesAndValidates(t *testing.T) {
	fallback, err := DefaultFallback()
	require.NoError(t, err)

	tags := fallback.Tags()
	assert.Len(t, tags, 13)
	assert.Contains(t, tags, "0.3.0")
	assert.Contains(t, tags, "0.4.0-beta.7")
}

func TestFallbackPinnedVersions(t *testing.T) {
	fallback, err := DefaultFallback()
	require.NoError(t, err)

	cases := []struct {
		tag, dep, want string
	}{
		{"0.3.0", "rust", "1.57.0"},
		{"0.3.0", "tailwindcss", "3.0.7"},
		{"0.3.0", "musl-dev", "1.2.2-r7"},
		{"0.4.0-beta.6", "rust", "1.63.0"},
		{"0.4.0-beta.6", "serve", "14.0.1"},
	}
	for _, tc := range cases {
		v, ok := fallback.Version(tc.tag, tc.dep, distro.Alpine)
		require.True(t, ok, "%s/%s", tc.tag, tc.dep)
		assert.Equal(t, tc.want, v)
	}
}

func TestFallbackChannels(t *testing.T) {
	fallback, err := DefaultFallback()
	require.NoError(t, err)

	channel, ok := fallback.Channel("0.3.0", distro.Alpine)
	require.True(t, ok)
	assert.Equal(t, "3.15.6", channel)

	channel, ok = fallback.Channel("0.4.0-beta.6", distro.Alpine)
	require.True(t, ok)
	assert.Equal(t, "3.16.2", channel)

	// No published debian builds exist yet, so no channel is recorded.
	_, ok = fallback.Channel("0.3.0", distro.Debian)
	assert.False(t, ok)
}

func TestFallbackMatchesPrereleaseTagsExactly(t *testing.T) {
	fallback, err := DefaultFallback()
	require.NoError(t, err)

	// "0.4.0" never shipped; only its beta tags did. A numeric prefix must
	// not match a pre-release record.
	_, ok := fallback.Version("0.4.0", "rust", distro.Alpine)
	assert.False(t, ok)

	_, ok = fallback.Channel("0.4.0", distro.Alpine)
	assert.False(t, ok)
}

func TestParseFallbackRejectsInvalidTag(t *testing.T) {
	_, err := ParseFallback([]byte(`
releases:
  "not-a-version":
    channels:
      alpine: "3.16.2"
    dependencies: {}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid release tag")
}

func TestParseFallbackRejectsPartialCoverage(t *testing.T) {
	// A release declaring an alpine channel must pin every alpine
	// requirement.
	_, err := ParseFallback([]byte(`
releases:
  "0.9.9":
    channels:
      alpine: "3.16.2"
    dependencies:
      rust:
        alpine: "1.63.0"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing dependency")
}

func TestParseFallbackAllowsFamiliesWithoutChannel(t *testing.T) {
	// Coverage is only enforced for families the release was published
	// against.
	doc := `
releases:
  "0.9.9":
    channels: {}
    dependencies:
      rust:
        alpine: "1.63.0"
`
	fallback, err := ParseFallback([]byte(doc))
	require.NoError(t, err)

	_, ok := fallback.Channel("0.9.9", distro.Alpine)
	assert.False(t, ok)
}
