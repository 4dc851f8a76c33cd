package manifest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perseus-framework/docker-perseus/internal/config"
	"github.com/perseus-framework/docker-perseus/internal/distro"
	"github.com/perseus-framework/docker-perseus/internal/resolve"
)

func resolvedSet(t *testing.T, tag string) *resolve.Set {
	t.Helper()
	fallback, err := resolve.DefaultFallback()
	require.NoError(t, err)

	resolver := &resolve.Resolver{Fallback: fallback}
	set, err := resolver.Resolve(context.Background(), tag, distro.New(distro.Alpine, ""))
	require.NoError(t, err)
	return set
}

func instructionOfKind(t *testing.T, stage Stage, kind Kind) Instruction {
	t.Helper()
	for _, ins := range stage.Instructions {
		if ins.Kind == kind {
			return ins
		}
	}
	t.Fatalf("stage %q has no %s instruction", stage.Name, kind.keyword())
	return Instruction{}
}

func TestGenerateStageOrder(t *testing.T) {
	m, err := NewGenerator(config.DefaultEndpoints()).Generate(resolvedSet(t, "0.3.0"))
	require.NoError(t, err)

	var names []string
	for _, stage := range m.Stages {
		names = append(names, stage.Name)
	}
	assert.Equal(t, []string{"base", "binaryen", "bonnie", "esbuild", "wasm-pack", "framework", "builder", "runtime"}, names)

	assert.Equal(t, "alpine:3.15.6", m.Stages[0].BaseRef)
	assert.Equal(t, "alpine:3.15.6", m.Stages[len(m.Stages)-1].BaseRef)
	assert.Equal(t, "framework", m.Stages[6].BaseRef)
}

func TestGenerateEnvDefaults(t *testing.T) {
	m, err := NewGenerator(config.DefaultEndpoints()).Generate(resolvedSet(t, "0.3.0"))
	require.NoError(t, err)

	env := instructionOfKind(t, m.Stages[0], KindEnv)
	assert.Contains(t, env.Args, "PERSEUS_VERSION=${PERSEUS_VERSION:-v0.3.0}")
	assert.Contains(t, env.Args, "EXAMPLE_NAME=${EXAMPLE_NAME:-showcase}")
	assert.Contains(t, env.Args, "BINARYEN_VERSION=${BINARYEN_VERSION:-104}")
	assert.Contains(t, env.Args, "ESBUILD_VERSION=${ESBUILD_VERSION:-0.14.6}")
	assert.Contains(t, env.Args, "WASM_PACK_VERSION=${WASM_PACK_VERSION:-0.10.2}")
	assert.Contains(t, env.Args, "ESBUILD_TARGET=${ESBUILD_TARGET:-es6}")
	assert.Contains(t, env.Args, "WASM_TARGET=${WASM_TARGET:-wasm32-unknown-unknown}")
	assert.Contains(t, env.Args, "CARGO_NET_GIT_FETCH_WITH_CLI=${CARGO_NET_GIT_FETCH_WITH_CLI:-false}")
}

func TestGenerateInstallBlock(t *testing.T) {
	set := resolvedSet(t, "0.3.0")
	m, err := NewGenerator(config.DefaultEndpoints()).Generate(set)
	require.NoError(t, err)

	run := instructionOfKind(t, m.Stages[0], KindRun)
	require.GreaterOrEqual(t, len(run.Args), 4)

	assert.Equal(t, "apk update;", run.Args[0])
	assert.Equal(t, "apk add", run.Args[1])

	pkgLines := run.Args[2 : len(run.Args)-1]
	want := make([]string, 0, len(pkgLines))
	for _, dep := range set.ByKind(resolve.DistroPackage) {
		want = append(want, dep.Name+"="+dep.Version)
	}
	// Package lines read alphabetically (the required list is already
	// sorted for alpine) and only the final one carries the terminator.
	for i, line := range pkgLines {
		if i == len(pkgLines)-1 {
			assert.Equal(t, want[i]+";", line)
			continue
		}
		assert.Equal(t, want[i], line)
	}

	bootstrap := run.Args[len(run.Args)-1]
	assert.Contains(t, bootstrap, "https://sh.rustup.rs/")
	assert.Contains(t, bootstrap, "--target wasm32-unknown-unknown")
}

func TestGenerateInstallBlockSortsUnorderedPackages(t *testing.T) {
	// Debian enumerates its distro packages in descriptor order, not
	// alphabetically, so the install block has to reorder them itself.
	payload := `{
  "release": "0.4.0-beta.6",
  "targets": [
    {
      "distribution": "debian",
      "channel": "bullseye",
      "dependencies": [
        {"name": "python3", "version": "3.9.2-3", "source": "distro-package"},
        {"name": "pkg-config", "version": "0.29.2-1", "source": "distro-package"},
        {"name": "perl", "version": "5.32.1-4+deb11u2", "source": "distro-package"},
        {"name": "git", "version": "1:2.30.2-1+deb11u2", "source": "distro-package"},
        {"name": "gawk", "version": "1:5.1.0-1", "source": "distro-package"},
        {"name": "curl", "version": "7.74.0-1.3+deb11u3", "source": "distro-package"},
        {"name": "build-essential", "version": "12.9", "source": "distro-package"},
        {"name": "apt-transport-https", "version": "2.2.4", "source": "distro-package"},
        {"name": "binaryen", "version": "109", "source": "binary-release"},
        {"name": "bonnie", "version": "0.3.2", "source": "binary-release"},
        {"name": "esbuild", "version": "0.14.51", "source": "binary-release"},
        {"name": "wasm-pack", "version": "0.10.3", "source": "binary-release"},
        {"name": "rust", "version": "1.63.0", "source": "language-toolchain"}
      ]
    }
  ]
}`
	path := filepath.Join(t.TempDir(), "lock.json")
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))
	sets, err := resolve.ReadLock(path)
	require.NoError(t, err)

	m, err := NewGenerator(config.DefaultEndpoints()).Generate(sets[0])
	require.NoError(t, err)
	assert.Equal(t, "debian:bullseye", m.Stages[0].BaseRef)

	run := instructionOfKind(t, m.Stages[0], KindRun)
	require.GreaterOrEqual(t, len(run.Args), 4)

	assert.Equal(t, "apt-get update;", run.Args[0])
	assert.Equal(t, "apt-get -y --no-install-recommends install", run.Args[1])

	assert.Equal(t, []string{
		"apt-transport-https=2.2.4",
		"build-essential=12.9",
		"curl=7.74.0-1.3+deb11u3",
		"gawk=1:5.1.0-1",
		"git=1:2.30.2-1+deb11u2",
		"perl=5.32.1-4+deb11u2",
		"pkg-config=0.29.2-1",
		"python3=3.9.2-3;",
	}, run.Args[2:len(run.Args)-1])
}

func TestGenerateBinaryStages(t *testing.T) {
	m, err := NewGenerator(config.DefaultEndpoints()).Generate(resolvedSet(t, "0.3.0"))
	require.NoError(t, err)

	binaryen := m.Stages[1]
	assert.Equal(t, "base", binaryen.BaseRef)
	run := instructionOfKind(t, binaryen, KindRun)
	joined := strings.Join(run.Args, " ")
	assert.Contains(t, joined, "WebAssembly/binaryen/releases/download/version_${BINARYEN_VERSION}")
	assert.Contains(t, joined, "tar")

	bonnie := m.Stages[2]
	run = instructionOfKind(t, bonnie, KindRun)
	assert.Contains(t, run.Args[0], "cargo install bonnie --version ${BONNIE_VERSION};")

	esbuild := m.Stages[3]
	run = instructionOfKind(t, esbuild, KindRun)
	assert.Contains(t, strings.Join(run.Args, " "), "evanw/esbuild/tarball/v${ESBUILD_VERSION}")
}

func TestGenerateBuilderCopiesEveryTool(t *testing.T) {
	m, err := NewGenerator(config.DefaultEndpoints()).Generate(resolvedSet(t, "0.3.0"))
	require.NoError(t, err)

	builder := m.Stages[6]
	var sources []string
	for _, ins := range builder.Instructions {
		if ins.Kind != KindCopy {
			continue
		}
		if from, ok := copySourceStage(ins); ok {
			sources = append(sources, from)
		}
	}
	assert.Subset(t, sources, []string{"binaryen", "bonnie", "esbuild", "wasm-pack"})
}

func TestGenerateFailsOnIncompleteSet(t *testing.T) {
	// A set without a binaryen pin cannot parameterize BINARYEN_VERSION.
	payload := `{
  "release": "0.3.0",
  "targets": [
    {
      "distribution": "alpine",
      "channel": "3.15.6",
      "dependencies": [
        {"name": "bonnie", "version": "0.3.2", "source": "binary-release"},
        {"name": "esbuild", "version": "0.14.6", "source": "binary-release"},
        {"name": "wasm-pack", "version": "0.10.2", "source": "binary-release"},
        {"name": "rust", "version": "1.57.0", "source": "language-toolchain"}
      ]
    }
  ]
}`
	path := filepath.Join(t.TempDir(), "lock.json")
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))
	sets, err := resolve.ReadLock(path)
	require.NoError(t, err)

	_, err = NewGenerator(config.DefaultEndpoints()).Generate(sets[0])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "binaryen")
}

func TestValidateRejectsUndeclaredStageRefs(t *testing.T) {
	m := &Manifest{Stages: []Stage{
		{Name: "builder", BaseRef: "framework", Instructions: []Instruction{
			{Kind: KindWorkdir, Args: []string{"/perseus"}},
		}},
	}}
	require.Error(t, m.Validate())

	m = &Manifest{Stages: []Stage{
		{Name: "base", BaseRef: "alpine:3.16.2"},
		{Name: "builder", BaseRef: "base", Instructions: []Instruction{
			{Kind: KindCopy, Args: []string{"--from=bonnie", "/bonnie/bonnie", "/usr/bin/"}},
		}},
	}}
	require.Error(t, m.Validate())
}
