package test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/perseus-framework/docker-perseus/e2e/harness"
)

// The e2e suite runs offline: every dependency pins from the recorded
// historical table, so no network access is needed.

func TestGenerateOffline(t *testing.T) {
	h := &harness.Harness{T: t}
	setup := h.NewIsolatedFS(nil)

	outputDir := filepath.Join(setup.BaseDir, "deploy")

	result := h.Run(
		"generate",
		"--dangerous-inline",
		"--offline",
		"--release", "0.3.0",
		"--distributions", "alpine",
		"--output", outputDir,
	)
	if result.Err != nil {
		t.Fatalf("generate failed: %v", result.Err)
	}

	dockerfilePath := filepath.Join(outputDir, "0.3.0", "alpine3.15.6", "Dockerfile")
	content, err := os.ReadFile(dockerfilePath)
	if err != nil {
		t.Fatalf("read Dockerfile: %v", err)
	}
	body := string(content)

	mustContain := []string{
		"FROM alpine:3.15.6 AS base",
		"PERSEUS_VERSION=${PERSEUS_VERSION:-v0.3.0}",
		"BINARYEN_VERSION=${BINARYEN_VERSION:-104}",
		"apk update;",
		"musl-dev=1.2.2-r7",
		"zlib-dev=1.2.12-r3;",
		"https://sh.rustup.rs/",
		"FROM alpine:3.15.6 AS runtime",
		"CMD [\"./server\"]",
	}
	for _, s := range mustContain {
		if !strings.Contains(body, s) {
			t.Errorf("Dockerfile missing expected content: %q", s)
		}
	}

	lockPath := filepath.Join(outputDir, "0.3.0", "dependencies.lock.json")
	raw, err := os.ReadFile(lockPath)
	if err != nil {
		t.Fatalf("read lock file: %v", err)
	}
	var doc struct {
		Release string `json:"release"`
		Targets []struct {
			Distribution string `json:"distribution"`
			Channel      string `json:"channel"`
			Dependencies []struct {
				Name string `json:"name"`
			} `json:"dependencies"`
		} `json:"targets"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("parse lock file: %v", err)
	}
	if doc.Release != "0.3.0" {
		t.Errorf("lock release = %q, want 0.3.0", doc.Release)
	}
	if len(doc.Targets) != 1 || doc.Targets[0].Channel != "3.15.6" {
		t.Fatalf("unexpected lock targets: %+v", doc.Targets)
	}
	if got := len(doc.Targets[0].Dependencies); got != 23 {
		t.Errorf("lock has %d dependencies, want 23", got)
	}
}

func TestGenerateOfflineUnknownReleaseFails(t *testing.T) {
	h := &harness.Harness{T: t}
	setup := h.NewIsolatedFS(nil)

	result := h.Run(
		"generate",
		"--dangerous-inline",
		"--offline",
		"--release", "9.9.9",
		"--distributions", "alpine",
		"--output", filepath.Join(setup.BaseDir, "deploy"),
	)
	if result.Err == nil {
		t.Fatal("expected generate to fail for an unrecorded release")
	}
}

func TestRenderFromLockMatchesGenerate(t *testing.T) {
	h := &harness.Harness{T: t}
	setup := h.NewIsolatedFS(nil)

	generateDir := filepath.Join(setup.BaseDir, "deploy")
	result := h.Run(
		"generate",
		"--dangerous-inline",
		"--offline",
		"--release", "0.4.0-beta.6",
		"--distributions", "alpine",
		"--output", generateDir,
	)
	if result.Err != nil {
		t.Fatalf("generate failed: %v", result.Err)
	}

	lockPath := filepath.Join(generateDir, "0.4.0-beta.6", "dependencies.lock.json")
	renderDir := filepath.Join(setup.BaseDir, "rendered")

	result = h.Run(
		"render",
		"--dangerous-inline",
		"--lock-file", lockPath,
		"--output", renderDir,
	)
	if result.Err != nil {
		t.Fatalf("render failed: %v", result.Err)
	}

	variant := filepath.Join("0.4.0-beta.6", "alpine3.16.2", "Dockerfile")
	first, err := os.ReadFile(filepath.Join(generateDir, variant))
	if err != nil {
		t.Fatalf("read generated Dockerfile: %v", err)
	}
	second, err := os.ReadFile(filepath.Join(renderDir, variant))
	if err != nil {
		t.Fatalf("read rendered Dockerfile: %v", err)
	}

	if string(first) != string(second) {
		t.Error("render from lock produced different Dockerfile than generate")
	}
}

func TestRenderRequiresLockFile(t *testing.T) {
	h := &harness.Harness{T: t}
	setup := h.NewIsolatedFS(nil)

	result := h.Run(
		"render",
		"--dangerous-inline",
		"--output", filepath.Join(setup.BaseDir, "deploy"),
	)
	if result.Err == nil {
		t.Fatal("expected render to fail without a lock file")
	}
}

func TestConfigInitWritesTemplate(t *testing.T) {
	h := &harness.Harness{T: t}
	setup := h.NewIsolatedFS(nil)

	target := filepath.Join(setup.ProjectDir, "docker-perseus.yaml")
	result := h.Run("config", "init", "--dangerous-inline", "--file", target)
	if result.Err != nil {
		t.Fatalf("config init failed: %v", result.Err)
	}

	content, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read config template: %v", err)
	}
	for _, s := range []string{"version:", "distributions:", "output:", "PERSEUS_DOCKER_"} {
		if !strings.Contains(string(content), s) {
			t.Errorf("config template missing %q", s)
		}
	}
}
