package testutil

import (
	"testing"

	"github.com/spf13/viper"

	"github.com/lepinkainen/shelfsync/internal/config"
)

// ResetConfig wipes viper and snapshots the config package variables,
// restoring both when the test finishes. Tests that touch shared
// configuration call this before anything else.
func ResetConfig(t *testing.T) {
	t.Helper()

	overwrite := config.OverwriteFiles
	updateCovers := config.UpdateCovers
	credentials := config.CredentialsFile
	cache := config.CacheFile

	viper.Reset()

	t.Cleanup(func() {
		config.OverwriteFiles = overwrite
		config.UpdateCovers = updateCovers
		config.CredentialsFile = credentials
		config.CacheFile = cache
		viper.Reset()
	})
}

// setViperValue sets a viper key and schedules the previous value to be
// put back when the test finishes. Keys that were unset cannot be unset
// again; viper has no Unset.
func setViperValue(t *testing.T, key string, value any) {
	t.Helper()

	old := viper.Get(key)
	had := viper.IsSet(key)
	viper.Set(key, value)

	t.Cleanup(func() {
		if had {
			viper.Set(key, old)
		}
	})
}

// SetupFormatCache points the format cache at a file inside the test
// environment and returns its path.
func SetupFormatCache(t *testing.T, env *TestEnv) string {
	t.Helper()

	cachePath := env.Path("format-cache.json")
	config.CacheFile = cachePath
	setViperValue(t, "cache.file", cachePath)

	return cachePath
}

// SetupDatasetteDB enables the local datastore against a database file
// inside the test environment and returns the file's path.
func SetupDatasetteDB(t *testing.T, env *TestEnv) string {
	t.Helper()

	dbPath := env.Path("test.db")
	setViperValue(t, "datasette.enabled", true)
	setViperValue(t, "datasette.dbfile", dbPath)

	return dbPath
}

// SetupE2EOutputDir points generated reports at the test environment.
func SetupE2EOutputDir(t *testing.T, env *TestEnv) {
	t.Helper()

	setViperValue(t, "outputdir", env.RootDir())
}
