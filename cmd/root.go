// Package cmd wires the kong command tree to the command implementations
// and owns process-level setup: logging, config loading and global flags.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/shelfsync/cmd/browse"
	"github.com/lepinkainen/shelfsync/cmd/cache"
	"github.com/lepinkainen/shelfsync/cmd/export"
	"github.com/lepinkainen/shelfsync/cmd/sync"
	"github.com/lepinkainen/shelfsync/cmd/tags"
	"github.com/lepinkainen/shelfsync/internal/config"
	shelfsyncerrors "github.com/lepinkainen/shelfsync/internal/errors"
)

var (
	runSync       = sync.SyncWithParams
	runBrowse     = browse.BrowseWithParams
	runExport     = export.ExportWithParams
	runTags       = tags.TagsWithParams
	runCacheInfo  = cache.InfoWithParams
	runCacheClear = cache.ClearWithParams
)

// CLI is the complete command structure for the shelfsync application.
type CLI struct {
	// Global flags
	Config       string `help:"Path to the config file" type:"path"`
	Loglevel     string `help:"Log level: debug, info, warn or error" default:"info"`
	Credentials  string `help:"Path to the Libby credentials YAML file"`
	CacheFile    string `help:"Path to the persistent format cache"`
	Overwrite    bool   `help:"Overwrite existing JSON output files"`
	UpdateCovers bool   `help:"Re-download cover images even if they already exist"`

	Sync   SyncCmd   `cmd:"" help:"Tag catalog matches for a Goodreads shelf"`
	Browse BrowseCmd `cmd:"" help:"Build an HTML report of borrowable shelf books"`
	Export ExportCmd `cmd:"" help:"Download a fresh Goodreads library export"`
	Tags   TagsCmd   `cmd:"" help:"List the tags on the catalog account"`
	Cache  CacheCmd  `cmd:"" help:"Inspect or reset the format cache"`
}

// SyncCmd represents the sync command
type SyncCmd struct {
	Input     string `short:"f" help:"Path to the Goodreads library export CSV"`
	Shelf     string `help:"Goodreads shelf to sync (default: to-read, or pick interactively)"`
	Tag       string `help:"Catalog tag to apply"`
	Remove    bool   `help:"Untag matches instead of tagging them"`
	DryRun    bool   `help:"Decide everything but write no tags"`
	Intersect string `help:"Second export CSV; keep only books on the shelf in both exports"`
	Media     string `help:"Catalog to search: ebook or audiobook" default:"audiobook"`
	Deep      bool   `negatable:"" help:"Match titles the library does not currently make available"`
}

// BrowseCmd represents the browse command
type BrowseCmd struct {
	Input         string   `short:"f" help:"Path to the Goodreads library export CSV"`
	Shelf         string   `help:"Goodreads shelf to browse (default: to-read, or pick interactively)"`
	Shelves       []string `help:"Keep only books carrying every one of these shelf tags"`
	MinPages      int      `help:"Drop books shorter than this many pages"`
	MaxPages      int      `help:"Drop books longer than this many pages"`
	Media         string   `help:"Catalog to search: ebook or audiobook" default:"ebook"`
	Output        string   `short:"o" help:"Directory for the browse report"`
	JSON          bool     `help:"Also write the report data as JSON"`
	JSONOutput    string   `help:"Path to the JSON output file (defaults to browse/browse.json)"`
	DB            bool     `help:"Also write the report data to the SQLite datastore"`
	Covers        bool     `help:"Download cover images for the report"`
	Enrich        bool     `help:"Fill missing page counts and years from public book APIs"`
	AvailableOnly bool     `help:"Keep only titles available to borrow right now"`
}

// ExportCmd represents the export command
type ExportCmd struct {
	Output   string `short:"o" help:"Directory to download the export into"`
	Headless bool   `negatable:"" help:"Run the automation browser headless" default:"true"`
}

// TagsCmd represents the tags command
type TagsCmd struct{}

// CacheCmd groups the format cache subcommands
type CacheCmd struct {
	Info  CacheInfoCmd  `cmd:"" help:"Show the cache location and what it holds"`
	Clear CacheClearCmd `cmd:"" help:"Delete the cache file"`
}

// CacheInfoCmd represents the cache info subcommand
type CacheInfoCmd struct{}

// CacheClearCmd represents the cache clear subcommand
type CacheClearCmd struct{}

// Execute runs the Kong-based CLI
func Execute() {
	var cli CLI

	// Parse command line with Kong
	ctx := kong.Parse(&cli,
		kong.Name("shelfsync"),
		kong.Description("Reconcile a Goodreads shelf against the Libby catalog."),
		kong.UsageOnError(),
	)

	initLogging(cli.Loglevel)
	initConfig(cli.Config)

	// Update global config based on parsed flags
	updateGlobalConfig(&cli)

	// Execute the selected command
	err := ctx.Run()
	if err != nil {
		// A user quitting the shelf picker is a stop, not a failure.
		if shelfsyncerrors.IsStopProcessingError(err) {
			slog.Info("Stopped", "reason", err)
			return
		}
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig(configFile string) {
	viper.SetDefault("outputdir", ".")
	viper.SetDefault("libby.credentials", "./libby.yaml")
	viper.SetDefault("cache.file", "./format-cache.json")

	// Datasette defaults
	viper.SetDefault("datasette.enabled", false)
	viper.SetDefault("datasette.dbfile", "./shelfsync.db")

	// Export automation defaults
	viper.SetDefault("export.output", "exports")
	viper.SetDefault("export.timeout", "3m")

	// Enable environment variable support
	viper.AutomaticEnv()
	// Bind specific environment variables to config keys
	if err := viper.BindEnv("goodreads.email", "GOODREADS_EMAIL"); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}
	if err := viper.BindEnv("goodreads.password", "GOODREADS_PASSWORD"); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Info("Config file not found, writing default config file...")
			if err := viper.SafeWriteConfig(); err != nil {
				slog.Error("Error writing config file", "error", err)
			}
			os.Exit(0)
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	// Initialize global config
	config.InitConfig()
}

func updateGlobalConfig(cli *CLI) {
	// Update config based on CLI flags
	config.SetOverwriteFiles(cli.Overwrite)
	config.SetUpdateCovers(cli.UpdateCovers)
	config.SetCredentialsFile(cli.Credentials)
	config.SetCacheFile(cli.CacheFile)
}

// resolveCSV falls back from the flag to the configured export path.
func resolveCSV(flagValue string) (string, error) {
	input := flagValue
	if input == "" {
		input = viper.GetString("goodreads.csvfile")
	}
	if input == "" {
		return "", fmt.Errorf("input CSV file is required (provide via --input flag or goodreads.csvfile in config)")
	}
	return input, nil
}

// Run methods for each command

func (s *SyncCmd) Run() error {
	input, err := resolveCSV(s.Input)
	if err != nil {
		return err
	}

	tagName := s.Tag
	if tagName == "" {
		tagName = viper.GetString("libby.tag")
	}
	if tagName == "" {
		return fmt.Errorf("tag name is required (provide via --tag flag or libby.tag in config)")
	}

	return runSync(sync.Params{
		CSVPath:      input,
		Shelf:        s.Shelf,
		TagName:      tagName,
		Remove:       s.Remove,
		DryRun:       s.DryRun,
		IntersectCSV: s.Intersect,
		Media:        s.Media,
		Deep:         s.Deep,
	})
}

func (b *BrowseCmd) Run() error {
	input, err := resolveCSV(b.Input)
	if err != nil {
		return err
	}

	if b.DB {
		viper.Set("datasette.enabled", true)
	}

	return runBrowse(browse.Params{
		CSVPath:       input,
		Shelf:         b.Shelf,
		Shelves:       b.Shelves,
		MinPages:      b.MinPages,
		MaxPages:      b.MaxPages,
		Media:         b.Media,
		OutputDir:     b.Output,
		WriteJSON:     b.JSON,
		JSONOutput:    b.JSONOutput,
		Covers:        b.Covers,
		Enrich:        b.Enrich,
		AvailableOnly: b.AvailableOnly,
	})
}

func (e *ExportCmd) Run() error {
	return runExport(export.Params{
		OutputDir: e.Output,
		Headless:  e.Headless,
	})
}

func (t *TagsCmd) Run() error {
	return runTags()
}

func (c *CacheInfoCmd) Run() error {
	return runCacheInfo()
}

func (c *CacheClearCmd) Run() error {
	return runCacheClear()
}

func initLogging(level string) {
	// Create a human-readable handler for logging
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: parseLogLevel(level),
	})

	// Set the default logger
	slog.SetDefault(slog.New(handler))
}

// parseLogLevel maps the flag value to a slog level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
