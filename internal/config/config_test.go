package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docker-perseus.yaml")
	payload := `
version: 0.4.0-beta.7
distributions:
  - alpine
  - debian
output: ./out
lock_file: ./out/lock.json
cleanup: true
offline: true
debug: false
`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "0.4.0-beta.7", cfg.Version)
	assert.Equal(t, []string{"alpine", "debian"}, cfg.Distributions)
	assert.Equal(t, "./out", cfg.OutputDir)
	assert.Equal(t, "./out/lock.json", cfg.LockFile)
	require.NotNil(t, cfg.Cleanup)
	assert.True(t, *cfg.Cleanup)
	require.NotNil(t, cfg.Offline)
	assert.True(t, *cfg.Offline)
	require.NotNil(t, cfg.Debug)
	assert.False(t, *cfg.Debug)
}

func TestLoadEmptyPathReturnsZeroConfig(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, FileConfig{}, cfg)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestFromStringRejectsInvalidYAML(t *testing.T) {
	_, err := FromString("version: [broken")
	require.Error(t, err)
}

func TestDefaultTemplateParses(t *testing.T) {
	cfg, err := FromString(DefaultTemplate())
	require.NoError(t, err)

	assert.Equal(t, "0.4.0-beta.7", cfg.Version)
	assert.Equal(t, []string{"alpine"}, cfg.Distributions)
	assert.Equal(t, "./perseus-deploy", cfg.OutputDir)
	require.NotNil(t, cfg.Cleanup)
	assert.False(t, *cfg.Cleanup)
	require.NotNil(t, cfg.Offline)
	assert.False(t, *cfg.Offline)
}
