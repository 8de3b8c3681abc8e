// Package csvutil turns CSV exports into typed records.
package csvutil

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Options configures how a CSV file is read.
type Options struct {
	// FieldsPerRecord is the expected column count. Zero means the first
	// record decides.
	FieldsPerRecord int

	// SkipInvalid drops records the parser rejects instead of failing the
	// whole file.
	SkipInvalid bool
}

// ParseFile reads filename and converts each data row with parse. The first
// row is treated as a header and discarded. Rows the csv reader cannot
// decode (wrong column count, bad quoting) are logged and skipped.
func ParseFile[T any](filename string, parse func([]string) (T, error), opts Options) ([]T, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filename, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", filename, err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%s is empty", filename)
	}

	reader := csv.NewReader(f)
	if opts.FieldsPerRecord > 0 {
		reader.FieldsPerRecord = opts.FieldsPerRecord
	}

	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("read header of %s: %w", filename, err)
	}

	var items []T
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			slog.Warn("Skipping unreadable row", "file", filename, "error", err)
			continue
		}

		item, err := parse(record)
		if err != nil {
			if opts.SkipInvalid {
				slog.Warn("Skipping invalid row", "file", filename, "error", err)
				continue
			}
			return nil, fmt.Errorf("parse row in %s: %w", filename, err)
		}

		items = append(items, item)
	}

	return items, nil
}
