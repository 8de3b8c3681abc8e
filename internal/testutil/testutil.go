// Package testutil provides the shared scaffolding for shelfsync tests: a
// sandboxed filesystem, config reset helpers, Goodreads export fixtures and
// golden file assertions.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestEnv is a per-test sandbox directory. Every path helper resolves inside
// it and fails the test on escape attempts, so a bad join cannot touch the
// real filesystem. The directory is removed when the test ends.
type TestEnv struct {
	t       *testing.T
	rootDir string
}

// NewTestEnv creates the sandbox under t.TempDir.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	return &TestEnv{t: t, rootDir: t.TempDir()}
}

// RootDir returns the sandbox root.
func (e *TestEnv) RootDir() string {
	return e.rootDir
}

// Path joins elem under the sandbox root and verifies the result stays
// inside it.
func (e *TestEnv) Path(elem ...string) string {
	e.t.Helper()

	joined := filepath.Clean(filepath.Join(e.rootDir, filepath.Join(elem...)))
	rel, err := filepath.Rel(e.rootDir, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		e.t.Fatalf("path %q escapes test sandbox %q", joined, e.rootDir)
	}
	return joined
}

// WriteFile writes content to a file in the sandbox, creating parents.
func (e *TestEnv) WriteFile(path string, content []byte) {
	e.t.Helper()

	target := e.Path(path)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		e.t.Fatalf("failed to create directory for %q: %v", target, err)
	}
	if err := os.WriteFile(target, content, 0o644); err != nil {
		e.t.Fatalf("failed to write %q: %v", target, err)
	}
}

// WriteFileString is WriteFile for string content.
func (e *TestEnv) WriteFileString(path, content string) {
	e.t.Helper()
	e.WriteFile(path, []byte(content))
}

// ReadFile reads a sandbox file, failing the test when it cannot.
func (e *TestEnv) ReadFile(path string) []byte {
	e.t.Helper()

	content, err := os.ReadFile(e.Path(path))
	if err != nil {
		e.t.Fatalf("failed to read %q: %v", path, err)
	}
	return content
}

// ReadFileString is ReadFile returning a string.
func (e *TestEnv) ReadFileString(path string) string {
	e.t.Helper()
	return string(e.ReadFile(path))
}

// MkdirAll creates a directory tree in the sandbox.
func (e *TestEnv) MkdirAll(path string) {
	e.t.Helper()

	if err := os.MkdirAll(e.Path(path), 0o755); err != nil {
		e.t.Fatalf("failed to create directory %q: %v", path, err)
	}
}

// FileExists reports whether a sandbox path exists.
func (e *TestEnv) FileExists(path string) bool {
	e.t.Helper()

	_, err := os.Stat(e.Path(path))
	return err == nil
}

// RequireFileExists fails the test unless the sandbox path exists.
func (e *TestEnv) RequireFileExists(path string) {
	e.t.Helper()

	if !e.FileExists(path) {
		e.t.Fatalf("expected file %q to exist", e.Path(path))
	}
}

// RequireFileNotExists fails the test if the sandbox path exists.
func (e *TestEnv) RequireFileNotExists(path string) {
	e.t.Helper()

	if e.FileExists(path) {
		e.t.Fatalf("expected file %q to not exist", e.Path(path))
	}
}
