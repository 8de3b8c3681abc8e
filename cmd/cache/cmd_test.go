package cache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/shelfsync/internal/formatcache"
	"github.com/lepinkainen/shelfsync/internal/testutil"
)

func TestInfoWithParams(t *testing.T) {
	env := testutil.NewTestEnv(t)
	testutil.ResetConfig(t)
	path := testutil.SetupFormatCache(t, env)

	cache := formatcache.Load(path)
	cache.Put("title-1", []string{"ebook-kindle", "ebook-epub-adobe"})
	cache.Put("title-2", []string{"audiobook-mp3"})
	require.NoError(t, cache.Save())

	require.NoError(t, InfoWithParams())
}

func TestInfoWithParamsColdCache(t *testing.T) {
	env := testutil.NewTestEnv(t)
	testutil.ResetConfig(t)
	testutil.SetupFormatCache(t, env)

	// No file on disk yet
	require.NoError(t, InfoWithParams())
}

func TestClearWithParams(t *testing.T) {
	env := testutil.NewTestEnv(t)
	testutil.ResetConfig(t)
	path := testutil.SetupFormatCache(t, env)

	cache := formatcache.Load(path)
	cache.Put("title-1", []string{"ebook-kindle"})
	require.NoError(t, cache.Save())
	env.RequireFileExists("format-cache.json")

	require.NoError(t, ClearWithParams())
	env.RequireFileNotExists("format-cache.json")

	reloaded := formatcache.Load(path)
	require.Zero(t, reloaded.Len())
}

func TestClearWithParamsMissingFile(t *testing.T) {
	env := testutil.NewTestEnv(t)
	testutil.ResetConfig(t)
	testutil.SetupFormatCache(t, env)

	// Clearing an absent cache is not an error
	require.NoError(t, ClearWithParams())
}

func TestClearWithParamsRunLockHeld(t *testing.T) {
	env := testutil.NewTestEnv(t)
	testutil.ResetConfig(t)
	path := testutil.SetupFormatCache(t, env)

	unlock, err := formatcache.AcquireRunLock(path)
	require.NoError(t, err)
	defer unlock()

	err = ClearWithParams()
	require.Error(t, err)
	require.Contains(t, err.Error(), "already in progress")
}
