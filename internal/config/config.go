package config

import (
	"github.com/spf13/viper"
)

// Global configuration variables
var (
	// OverwriteFiles controls whether existing report and JSON files are overwritten
	OverwriteFiles bool
	// UpdateCovers forces re-downloading cover images even if they already exist
	UpdateCovers bool
	// CredentialsFile is the path to the Libby credentials YAML file
	CredentialsFile string
	// CacheFile is the path to the persistent format cache
	CacheFile string
)

// InitConfig initializes the global configuration
func InitConfig() {
	// Set default values
	viper.SetDefault("outputdir", ".")
	viper.SetDefault("OverwriteFiles", false)
	viper.SetDefault("libby.credentials", "./libby.yaml")
	viper.SetDefault("cache.file", "./format-cache.json")

	// Get values from viper
	OverwriteFiles = viper.GetBool("OverwriteFiles")
	UpdateCovers = viper.GetBool("UpdateCovers")
	CredentialsFile = viper.GetString("libby.credentials")
	CacheFile = viper.GetString("cache.file")
}

// SetOverwriteFiles sets the OverwriteFiles flag
func SetOverwriteFiles(overwrite bool) {
	OverwriteFiles = overwrite
}

// SetUpdateCovers sets the UpdateCovers flag
func SetUpdateCovers(update bool) {
	UpdateCovers = update
}

// SetCredentialsFile overrides the credentials file path
func SetCredentialsFile(path string) {
	if path != "" {
		CredentialsFile = path
	}
}

// SetCacheFile overrides the format cache path
func SetCacheFile(path string) {
	if path != "" {
		CacheFile = path
	}
}
