// Package harness drives the CLI end to end through the cobra pipeline
// inside an isolated filesystem.
package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/perseus-framework/docker-perseus/internal/cmd"
	"github.com/perseus-framework/docker-perseus/internal/testenv"
)

// Harness provides an isolated filesystem environment for integration tests.
type Harness struct {
	T *testing.T
}

// RunResult holds the outcome of a CLI command execution.
type RunResult struct {
	ExitCode int
	Err      error
}

// SetupResult holds the resolved paths from NewIsolatedFS.
type SetupResult struct {
	BaseDir    string
	ProjectDir string
	CacheDir   string
}

// FSOptions allows overriding the project directory name.
type FSOptions struct {
	ProjectDir string // subdirectory name under base (default: "testproject")
}

// NewIsolatedFS creates an isolated test environment.
//
// Delegates cache directory setup to testenv.New, then adds a project
// directory and chdirs into it (restored on cleanup).
func (h *Harness) NewIsolatedFS(opts *FSOptions) *SetupResult {
	h.T.Helper()

	if opts == nil {
		opts = &FSOptions{}
	}
	if opts.ProjectDir == "" {
		opts.ProjectDir = "testproject"
	}

	env := testenv.New(h.T)

	projectDir := filepath.Join(env.Dirs.Base, opts.ProjectDir)
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		h.T.Fatalf("harness: creating project dir %s: %v", projectDir, err)
	}

	// Chdir to project directory so relative output paths resolve there.
	prevDir, err := os.Getwd()
	if err != nil {
		h.T.Fatalf("harness: getting cwd: %v", err)
	}
	if err := os.Chdir(projectDir); err != nil {
		h.T.Fatalf("harness: chdir to project dir: %v", err)
	}
	h.T.Cleanup(func() {
		_ = os.Chdir(prevDir)
	})

	return &SetupResult{
		BaseDir:    env.Dirs.Base,
		ProjectDir: projectDir,
		CacheDir:   env.Dirs.Cache,
	}
}

// Run executes a CLI command through the full cmd.NewRootCmd Cobra pipeline.
func (h *Harness) Run(args ...string) *RunResult {
	h.T.Helper()

	rootCmd := cmd.NewRootCmd("test", "test")

	rootCmd.SetArgs(args)

	err := rootCmd.Execute()

	exitCode := 0
	if err != nil {
		exitCode = 1
	}

	return &RunResult{ExitCode: exitCode, Err: err}
}
