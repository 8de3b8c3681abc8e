// Package fileutil holds the file-writing helpers the report writers share.
package fileutil

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// filenameReplacer maps characters that break paths to safe equivalents.
// Book titles love colons.
var filenameReplacer = strings.NewReplacer(
	":", " -",
	"/", "-",
	"\\", "-",
)

// SanitizeFilename makes a book title safe to use as a filename.
func SanitizeFilename(name string) string {
	return filenameReplacer.Replace(name)
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// WriteFileWithOverwrite writes data to path, creating parent directories.
// An existing file is left alone unless overwrite is set; the first return
// reports whether the file was written.
func WriteFileWithOverwrite(path string, data []byte, perm os.FileMode, overwrite bool) (bool, error) {
	if FileExists(path) && !overwrite {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, err
	}

	if err := os.WriteFile(path, data, perm); err != nil {
		return false, err
	}
	return true, nil
}

// WriteJSONFile writes data to path as indented JSON through
// WriteFileWithOverwrite, so the same overwrite rules apply.
func WriteJSONFile(data any, path string, overwrite bool) (bool, error) {
	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return false, fmt.Errorf("failed to marshal JSON: %w", err)
	}

	written, err := WriteFileWithOverwrite(path, encoded, 0644, overwrite)
	if err != nil {
		return false, fmt.Errorf("failed to write JSON file %s: %w", path, err)
	}
	if written {
		slog.Info("Wrote JSON file", "filename", path)
	} else {
		slog.Debug("JSON file already exists, skipping", "filename", path)
	}
	return written, nil
}
