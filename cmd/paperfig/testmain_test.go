package main

import (
	"os"
	"testing"

	"github.com/joho/godotenv"
)

// TestMain loads .env if present, runs the CLI tests and removes the test
// build of the binary.
func TestMain(m *testing.M) {
	_ = godotenv.Load()

	code := m.Run()
	if cliBuildDir != "" {
		_ = os.RemoveAll(cliBuildDir)
	}
	os.Exit(code)
}
