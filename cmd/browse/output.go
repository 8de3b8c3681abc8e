package browse

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lepinkainen/shelfsync/internal/cmdutil"
	"github.com/lepinkainen/shelfsync/internal/config"
	"github.com/lepinkainen/shelfsync/internal/datastore"
	"github.com/lepinkainen/shelfsync/internal/fileutil"
)

const reportFileName = "browse.html"

// Column names follow the Record's JSON field names.
const browseResultsSchema = `CREATE TABLE IF NOT EXISTS browse_results (
		libby_id TEXT PRIMARY KEY,
		title TEXT,
		author TEXT,
		pages INTEGER,
		goodreads_shelves TEXT,
		goodreads_id INTEGER,
		is_available BOOLEAN,
		estimated_wait_days INTEGER,
		holds_count INTEGER,
		owned_copies INTEGER,
		available_copies INTEGER,
		has_kindle BOOLEAN,
		formats TEXT,
		subjects TEXT,
		average_rating REAL,
		year_published INTEGER,
		date_added TEXT,
		private_notes TEXT,
		cover_path TEXT
	)`

// writeOutputs writes the HTML report and, when enabled, the JSON snapshot
// and the datastore rows. The report is rewritten on every run; the JSON
// file honors the overwrite setting.
func writeOutputs(ctx context.Context, records []Record, cfg *cmdutil.BaseCommandConfig) error {
	html, err := renderHTML(records)
	if err != nil {
		return err
	}

	reportPath := filepath.Join(cfg.OutputDir, reportFileName)
	if err := os.WriteFile(reportPath, html, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	slog.Info("Wrote browse report", "path", reportPath, "books", len(records), "available", availableCount(records))

	if cfg.WriteJSON {
		written, err := fileutil.WriteJSONFile(records, cfg.JSONOutput, config.OverwriteFiles)
		if err != nil {
			return fmt.Errorf("failed to write JSON output: %w", err)
		}
		if !written {
			slog.Info("JSON output exists, skipping (use --overwrite to replace)", "path", cfg.JSONOutput)
		}
	}

	report, err := buildReport(records)
	if err != nil {
		return err
	}
	return cmdutil.WriteToDatastore(ctx, report)
}

func buildReport(records []Record) (datastore.Report, error) {
	rows := make([]map[string]any, len(records))
	for i, record := range records {
		row, err := cmdutil.RecordToRow(record, cmdutil.RowOptions{JoinSlices: true})
		if err != nil {
			return datastore.Report{}, fmt.Errorf("failed to build datastore row for %s: %w", record.Title, err)
		}
		rows[i] = row
	}

	return datastore.Report{
		Table:      "browse_results",
		DDL:        browseResultsSchema,
		PrimaryKey: "libby_id",
		Rows:       rows,
	}, nil
}
