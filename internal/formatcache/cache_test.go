package formatcache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileStartsCold(t *testing.T) {
	cache := Load(filepath.Join(t.TempDir(), "format-cache.json"))

	assert.Equal(t, 0, cache.Len())
	_, ok := cache.Get("123")
	assert.False(t, ok)
}

func TestLoadCorruptFileStartsCold(t *testing.T) {
	path := filepath.Join(t.TempDir(), "format-cache.json")
	require.NoError(t, os.WriteFile(path, []byte("not json {{{"), 0644))

	cache := Load(path)

	assert.Equal(t, 0, cache.Len())
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "format-cache.json")

	cache := Load(path)
	cache.Put("111", []string{"ebook-kindle", "ebook-epub-adobe"})
	cache.Put("222", []string{"ebook-overdrive"})
	require.NoError(t, cache.Save())

	reloaded := Load(path)
	assert.Equal(t, 2, reloaded.Len())

	formats, ok := reloaded.Get("111")
	require.True(t, ok)
	assert.Equal(t, []string{"ebook-kindle", "ebook-epub-adobe"}, formats)
}

func TestSaveSkipsWhenClean(t *testing.T) {
	path := filepath.Join(t.TempDir(), "format-cache.json")

	cache := Load(path)
	require.NoError(t, cache.Save())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "clean cache should not touch disk")
}

func TestSaveCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "format-cache.json")

	cache := Load(path)
	cache.Put("111", []string{"ebook-kindle"})
	require.NoError(t, cache.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var file struct {
		Entries map[string][]string `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(data, &file))
	assert.Equal(t, []string{"ebook-kindle"}, file.Entries["111"])
}

func TestMissesPreservesInputOrder(t *testing.T) {
	cache := Load(filepath.Join(t.TempDir(), "format-cache.json"))
	cache.Put("222", []string{"ebook-overdrive"})

	misses := cache.Misses([]string{"111", "222", "333"})

	assert.Equal(t, []string{"111", "333"}, misses)
}

func TestCachedEmptyFormatListIsAHit(t *testing.T) {
	cache := Load(filepath.Join(t.TempDir(), "format-cache.json"))
	cache.Put("111", nil)

	misses := cache.Misses([]string{"111"})
	assert.Empty(t, misses)

	formats, ok := cache.Get("111")
	assert.True(t, ok)
	assert.Empty(t, formats)
}

func TestEntriesReturnsCopy(t *testing.T) {
	cache := Load(filepath.Join(t.TempDir(), "format-cache.json"))
	cache.Put("111", []string{"ebook-kindle"})

	entries := cache.Entries()
	entries["111"][0] = "mutated"
	entries["999"] = []string{"extra"}

	formats, _ := cache.Get("111")
	assert.Equal(t, []string{"ebook-kindle"}, formats)
	_, ok := cache.Get("999")
	assert.False(t, ok)
}

func TestClearRemovesFileAndEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "format-cache.json")

	cache := Load(path)
	cache.Put("111", []string{"ebook-kindle"})
	require.NoError(t, cache.Save())

	require.NoError(t, cache.Clear())

	assert.Equal(t, 0, cache.Len())
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Clearing an already missing file is fine.
	require.NoError(t, cache.Clear())
}

func TestAcquireRunLockConflict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "format-cache.json")

	unlock, err := AcquireRunLock(path)
	require.NoError(t, err)
	defer unlock()

	_, err = AcquireRunLock(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in progress")
}

func TestAcquireRunLockReleases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "format-cache.json")

	unlock, err := AcquireRunLock(path)
	require.NoError(t, err)
	unlock()

	unlock2, err := AcquireRunLock(path)
	require.NoError(t, err)
	unlock2()
}
