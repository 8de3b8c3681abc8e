package cmdutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RowOptions configures RecordToRow.
type RowOptions struct {
	// JoinSlices flattens string slices into comma-joined values, which
	// keeps them usable as Datasette facets.
	JoinSlices bool
	// Omit drops the named columns from the row.
	Omit []string
}

// RecordToRow flattens a record into a column map keyed by its JSON field
// names, so datastore columns line up with the JSON report.
func RecordToRow(record any, opts RowOptions) (map[string]any, error) {
	encoded, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	row := make(map[string]any)
	if err := json.Unmarshal(encoded, &row); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}

	for _, column := range opts.Omit {
		delete(row, column)
	}

	if opts.JoinSlices {
		for column, value := range row {
			if joined, ok := joinStringSlice(value); ok {
				row[column] = joined
			}
		}
	}
	return row, nil
}

// joinStringSlice reports whether value decoded from a JSON array of strings
// and, if so, returns the comma-joined form.
func joinStringSlice(value any) (string, bool) {
	items, ok := value.([]any)
	if !ok {
		return "", false
	}
	parts := make([]string, len(items))
	for i, item := range items {
		part, ok := item.(string)
		if !ok {
			return "", false
		}
		parts[i] = part
	}
	return strings.Join(parts, ","), true
}
