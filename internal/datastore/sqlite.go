package datastore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

// SQLiteStore writes reports into a local SQLite file. Point Datasette at
// the file to browse the results.
type SQLiteStore struct {
	path string
	db   *sql.DB
}

// NewSQLiteStore returns a store backed by the SQLite file at path.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Connect opens the database file, creating it when missing.
func (s *SQLiteStore) Connect(ctx context.Context) error {
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", s.path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to open database %s: %w", s.path, err)
	}
	s.db = db
	return nil
}

// WriteReport swaps the report table's contents inside a single transaction,
// so a concurrent reader never sees a half-written report.
func (s *SQLiteStore) WriteReport(ctx context.Context, report Report) error {
	if _, err := s.db.ExecContext(ctx, report.DDL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", report.Table, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+report.Table); err != nil {
		return fmt.Errorf("failed to clear table %s: %w", report.Table, err)
	}

	if len(report.Rows) > 0 {
		if err := insertRows(ctx, tx, report); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report: %w", err)
	}
	return nil
}

func insertRows(ctx context.Context, tx *sql.Tx, report Report) error {
	columns := columnOrder(report.Rows)
	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		report.Table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range report.Rows {
		values := make([]any, len(columns))
		for i, column := range columns {
			// Absent columns insert as NULL
			values[i] = row[column]
		}
		if _, err := stmt.ExecContext(ctx, values...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", report.Table, err)
		}
	}
	return nil
}

// columnOrder is the sorted union of every row's columns. Rows may omit
// columns (empty optional fields), so the first row alone is not enough.
func columnOrder(rows []map[string]any) []string {
	seen := make(map[string]bool)
	columns := make([]string, 0, len(rows[0]))
	for _, row := range rows {
		for column := range row {
			if !seen[column] {
				seen[column] = true
				columns = append(columns, column)
			}
		}
	}
	sort.Strings(columns)
	return columns
}

// Close closes the database file.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
