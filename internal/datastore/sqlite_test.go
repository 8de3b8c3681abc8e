package datastore

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

const testDDL = `CREATE TABLE IF NOT EXISTS browse_results (
	libby_id TEXT PRIMARY KEY,
	title TEXT,
	pages INTEGER,
	is_available BOOLEAN,
	cover_path TEXT
)`

func testReport(rows ...map[string]any) Report {
	return Report{
		Table:      "browse_results",
		DDL:        testDDL,
		PrimaryKey: "libby_id",
		Rows:       rows,
	}
}

func connectedStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "shelfsync.db"))
	if err := store.Connect(context.Background()); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func queryTitles(t *testing.T, store *SQLiteStore) []string {
	t.Helper()
	rows, err := store.db.Query("SELECT title FROM browse_results ORDER BY title")
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	defer func() { _ = rows.Close() }()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows failed: %v", err)
	}
	return titles
}

func TestSQLiteStore_WriteReport(t *testing.T) {
	store := connectedStore(t)

	report := testReport(
		map[string]any{"libby_id": "lib-1", "title": "Piranesi", "pages": 245, "is_available": true},
		map[string]any{"libby_id": "lib-2", "title": "Middlemarch", "pages": 880, "is_available": false},
	)
	if err := store.WriteReport(context.Background(), report); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	titles := queryTitles(t, store)
	if len(titles) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(titles))
	}
	if titles[0] != "Middlemarch" || titles[1] != "Piranesi" {
		t.Errorf("unexpected rows: %v", titles)
	}
}

func TestSQLiteStore_WriteReportReplacesPreviousRun(t *testing.T) {
	store := connectedStore(t)
	ctx := context.Background()

	first := testReport(
		map[string]any{"libby_id": "lib-1", "title": "Piranesi"},
		map[string]any{"libby_id": "lib-2", "title": "Middlemarch"},
	)
	if err := store.WriteReport(ctx, first); err != nil {
		t.Fatalf("first write failed: %v", err)
	}

	second := testReport(map[string]any{"libby_id": "lib-3", "title": "Dune"})
	if err := store.WriteReport(ctx, second); err != nil {
		t.Fatalf("second write failed: %v", err)
	}

	titles := queryTitles(t, store)
	if len(titles) != 1 || titles[0] != "Dune" {
		t.Errorf("expected only the rerun's rows, got %v", titles)
	}
}

func TestSQLiteStore_WriteReportUnionsColumns(t *testing.T) {
	store := connectedStore(t)

	// The first row has no cover, so its map lacks the column entirely
	report := testReport(
		map[string]any{"libby_id": "lib-1", "title": "Piranesi"},
		map[string]any{"libby_id": "lib-2", "title": "Dune", "cover_path": "attachments/Dune - cover.jpg"},
	)
	if err := store.WriteReport(context.Background(), report); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	var cover sql.NullString
	if err := store.db.QueryRow("SELECT cover_path FROM browse_results WHERE libby_id = ?", "lib-2").Scan(&cover); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if !cover.Valid || cover.String != "attachments/Dune - cover.jpg" {
		t.Errorf("unexpected cover for lib-2: %+v", cover)
	}

	if err := store.db.QueryRow("SELECT cover_path FROM browse_results WHERE libby_id = ?", "lib-1").Scan(&cover); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if cover.Valid {
		t.Errorf("expected NULL cover for lib-1, got %q", cover.String)
	}
}

func TestSQLiteStore_WriteReportEmptyClearsTable(t *testing.T) {
	store := connectedStore(t)
	ctx := context.Background()

	if err := store.WriteReport(ctx, testReport(map[string]any{"libby_id": "lib-1", "title": "Piranesi"})); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := store.WriteReport(ctx, testReport()); err != nil {
		t.Fatalf("empty write failed: %v", err)
	}

	if titles := queryTitles(t, store); len(titles) != 0 {
		t.Errorf("expected empty table, got %v", titles)
	}
}

func TestSQLiteStore_CloseWithoutConnect(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "shelfsync.db"))
	if err := store.Close(); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}
