package browse

import (
	"context"
	"log/slog"

	"github.com/lepinkainen/shelfsync/internal/config"
	"github.com/lepinkainen/shelfsync/internal/fileutil"
)

var downloadCover = fileutil.DownloadCover

// downloadCovers pulls cover thumbnails into the report's attachments
// directory and points each record at its local file. A failed download
// leaves the record without a cover.
func downloadCovers(ctx context.Context, records []Record, outputDir string) {
	downloaded := 0
	for i := range records {
		if records[i].coverURL == "" {
			continue
		}
		result, err := downloadCover(ctx, fileutil.CoverDownloadOptions{
			URL:          records[i].coverURL,
			OutputDir:    outputDir,
			Filename:     fileutil.BuildCoverFilename(records[i].Title),
			UpdateCovers: config.UpdateCovers,
		})
		if err != nil {
			slog.Warn("Failed to download cover", "title", records[i].Title, "error", err)
			continue
		}
		if result == nil {
			continue
		}
		records[i].CoverPath = result.RelativePath
		if result.Downloaded {
			downloaded++
		}
	}
	if downloaded > 0 {
		slog.Info("Downloaded covers", "count", downloaded)
	}
}
