// Package export automates fetching the Goodreads library export CSV with a
// headless browser, so the sync and browse commands have fresh data to work
// from.
package export

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

var downloadExport = AutomateExport

// Params carries the export command's settings after flag/config resolution.
type Params struct {
	OutputDir string
	Headless  bool
}

// ExportWithParams runs the browser automation with credentials taken from
// config. The password never appears in logs.
func ExportWithParams(params Params) error {
	email := viper.GetString("goodreads.email")
	password := viper.GetString("goodreads.password")
	if email == "" || password == "" {
		return fmt.Errorf("goodreads credentials are required (set goodreads.email and goodreads.password in config, or GOODREADS_EMAIL and GOODREADS_PASSWORD)")
	}

	outputDir := params.OutputDir
	if outputDir == "" {
		outputDir = viper.GetString("export.output")
	}

	timeout := defaultTimeout
	if raw := viper.GetString("export.timeout"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid export.timeout %q: %w", raw, err)
		}
		timeout = parsed
	}

	_, err := downloadExport(context.Background(), Options{
		Email:       email,
		Password:    password,
		DownloadDir: outputDir,
		Headless:    params.Headless,
		Timeout:     timeout,
	})
	return err
}
