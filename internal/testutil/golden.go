package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// GoldenHelper compares generated reports against checked-in golden files.
// Run tests with UPDATE_GOLDEN=true to rewrite the golden files from the
// current output instead of comparing against them.
type GoldenHelper struct {
	t         *testing.T
	goldenDir string
	update    bool
}

// NewGoldenHelper returns a helper rooted at goldenDir, usually the
// package's testdata directory.
func NewGoldenHelper(t *testing.T, goldenDir string) *GoldenHelper {
	t.Helper()

	return &GoldenHelper{
		t:         t,
		goldenDir: goldenDir,
		update:    os.Getenv("UPDATE_GOLDEN") == "true",
	}
}

// AssertGolden compares actual byte-for-byte with the named golden file.
func (g *GoldenHelper) AssertGolden(name string, actual []byte) {
	g.t.Helper()

	if g.maybeUpdate(name, actual) {
		return
	}

	golden := g.read(name)
	assert.Equal(g.t, string(golden), string(actual),
		"content does not match golden file %s", name)
}

// AssertGoldenJSON compares JSON documents structurally, so key order
// and whitespace differences do not fail the test.
func (g *GoldenHelper) AssertGoldenJSON(name string, actual []byte) {
	g.t.Helper()

	if g.maybeUpdate(name, actual) {
		return
	}

	golden := g.read(name)
	assert.JSONEq(g.t, string(golden), string(actual),
		"JSON does not match golden file %s", name)
}

func (g *GoldenHelper) path(name string) string {
	return filepath.Join(g.goldenDir, name)
}

func (g *GoldenHelper) maybeUpdate(name string, actual []byte) bool {
	g.t.Helper()

	if !g.update {
		return false
	}

	path := g.path(name)
	require.NoError(g.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(g.t, os.WriteFile(path, actual, 0o644))
	g.t.Logf("Updated golden file: %s", path)
	return true
}

func (g *GoldenHelper) read(name string) []byte {
	g.t.Helper()

	path := g.path(name)
	content, err := os.ReadFile(path)
	require.NoError(g.t, err, "failed to read golden file %s", path)
	return content
}
