package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatVersion(t *testing.T) {
	assert.Equal(t, "docker-perseus version 1.2.3 (2026-08-25)\n", formatVersion("v1.2.3", "2026-08-25"))
	assert.Equal(t, "docker-perseus version 1.2.3\n", formatVersion("1.2.3", ""))
	assert.Equal(t, "docker-perseus version DEV\n", formatVersion("", ""))
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("PERSEUS_DOCKER_OUTPUT", " /tmp/deploy ")
	t.Setenv("PERSEUS_DOCKER_RELEASE", "0.4.0-beta.7")
	t.Setenv("PERSEUS_DOCKER_DISTRIBUTIONS", "alpine,fedora")
	t.Setenv("PERSEUS_DOCKER_OFFLINE", "true")
	t.Setenv("PERSEUS_DOCKER_CLEANUP", "1")

	opts := runtimeOptions{}
	require.NoError(t, applyEnvOverrides(&opts))

	assert.Equal(t, "/tmp/deploy", opts.OutputDir)
	assert.Equal(t, "0.4.0-beta.7", opts.Version)
	assert.Equal(t, []string{"alpine", "fedora"}, opts.Distributions)
	assert.True(t, opts.Offline)
	assert.True(t, opts.Cleanup)
}

func TestApplyEnvOverridesRejectsBadBool(t *testing.T) {
	t.Setenv("PERSEUS_DOCKER_DEBUG", "definitely")

	opts := runtimeOptions{}
	err := applyEnvOverrides(&opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PERSEUS_DOCKER_DEBUG")
}

func TestLockPathDefaultsUnderOutput(t *testing.T) {
	opts := runtimeOptions{OutputDir: "/deploy"}
	assert.Equal(t, "/deploy/0.3.0/dependencies.lock.json", lockPath(opts, "0.3.0"))

	opts.LockFile = "/elsewhere/lock.json"
	assert.Equal(t, "/elsewhere/lock.json", lockPath(opts, "0.3.0"))
}
