package fileutil

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
)

// coverMaxWidth keeps report thumbnails small enough that a few hundred of
// them do not bloat the output directory.
const coverMaxWidth = 250

// CoverDownloadOptions holds options for downloading cover images.
type CoverDownloadOptions struct {
	// URL is the source URL of the cover image
	URL string
	// OutputDir is the directory where the cover will be saved
	OutputDir string
	// Filename is the name of the cover file (e.g., "Title - cover.jpg")
	Filename string
	// UpdateCovers forces re-downloading even if cover exists
	UpdateCovers bool
}

// CoverDownloadResult holds the result of a cover download operation.
type CoverDownloadResult struct {
	// Downloaded indicates if a new file was downloaded
	Downloaded bool
	// LocalPath is the full path to the downloaded cover
	LocalPath string
	// RelativePath is the path relative to the report (e.g., "attachments/Title - cover.jpg")
	RelativePath string
	// Filename is just the filename
	Filename string
}

// DownloadCover downloads a cover image into the attachments directory,
// resized to the report thumbnail width. It skips downloading if the file
// already exists and UpdateCovers is false.
func DownloadCover(ctx context.Context, opts CoverDownloadOptions) (*CoverDownloadResult, error) {
	if opts.URL == "" {
		return nil, nil
	}

	attachmentsDir := filepath.Join(opts.OutputDir, "attachments")
	if err := os.MkdirAll(attachmentsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create attachments directory: %w", err)
	}

	localPath := filepath.Join(attachmentsDir, opts.Filename)
	relativePath := filepath.Join("attachments", opts.Filename)

	result := &CoverDownloadResult{
		LocalPath:    localPath,
		RelativePath: relativePath,
		Filename:     opts.Filename,
	}

	// Check if file already exists
	if FileExists(localPath) && !opts.UpdateCovers {
		slog.Debug("Cover already exists, skipping download", "path", localPath)
		return result, nil
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cover request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download cover: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d downloading cover from %s", resp.StatusCode, opts.URL)
	}

	img, err := imaging.Decode(resp.Body, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode cover: %w", err)
	}

	if img.Bounds().Dx() > coverMaxWidth {
		img = imaging.Resize(img, coverMaxWidth, 0, imaging.Lanczos)
	}

	if err := imaging.Save(img, localPath, imaging.JPEGQuality(85)); err != nil {
		return nil, fmt.Errorf("failed to write cover file: %w", err)
	}

	slog.Info("Downloaded cover", "path", localPath)
	result.Downloaded = true

	return result, nil
}

// BuildCoverFilename creates a standard cover filename from a title.
// Returns: "Title - cover.jpg"
func BuildCoverFilename(title string) string {
	return SanitizeFilename(title) + " - cover.jpg"
}
