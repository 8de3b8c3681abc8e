// Package datastore lands finished browse reports where Datasette can serve
// them: a local SQLite file, or a remote instance running the
// datasette-insert plugin.
package datastore

import "context"

// Report is one table's worth of rows plus what a store needs to (re)create
// the table.
type Report struct {
	// Table is the destination table name.
	Table string
	// DDL creates the table when it does not exist yet. Only the local store
	// runs it; the insert plugin creates remote tables on the fly.
	DDL string
	// PrimaryKey names the column remote upserts key on.
	PrimaryKey string
	// Rows holds the report rows keyed by column name.
	Rows []map[string]any
}

// Store is a browse report destination. Writes replace earlier rows for the
// same report, so rerunning a browse never stacks duplicates.
type Store interface {
	// Connect establishes the connection.
	Connect(ctx context.Context) error

	// WriteReport lands the report, replacing whatever an earlier run wrote.
	WriteReport(ctx context.Context, report Report) error

	// Close releases the connection.
	Close() error
}
