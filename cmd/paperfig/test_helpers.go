package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
)

var (
	cliBuildOnce sync.Once
	cliBuildDir  string
	cliBuildPath string
	cliBuildErr  error
)

// getBinaryPath compiles the CLI once per test binary and returns the path to
// the resulting executable.
func getBinaryPath(t *testing.T) string {
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	cliBuildOnce.Do(func() {
		cliBuildDir, cliBuildErr = os.MkdirTemp("", "paperfig-cli-")
		if cliBuildErr != nil {
			return
		}
		cliBuildPath = filepath.Join(cliBuildDir, "paperfig")
		cmd := exec.Command("go", "build", "-o", cliBuildPath, ".")
		if out, err := cmd.CombinedOutput(); err != nil {
			cliBuildErr = &buildError{output: string(out), err: err}
		}
	})
	if cliBuildErr != nil {
		t.Fatalf("failed to build CLI for testing: %v", cliBuildErr)
	}

	return cliBuildPath
}

type buildError struct {
	output string
	err    error
}

func (e *buildError) Error() string {
	return e.err.Error() + "\n" + e.output
}
