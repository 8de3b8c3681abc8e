package testutil

import "strings"

// GoodreadsExportHeader is the header row of a Goodreads library export.
const GoodreadsExportHeader = "Book Id,Title,Author,Author l-f,Additional Authors,ISBN,ISBN13," +
	"My Rating,Average Rating,Publisher,Binding,Number of Pages,Year Published," +
	"Original Publication Year,Date Read,Date Added,Bookshelves," +
	"Bookshelves with positions,Exclusive Shelf,My Review,Spoiler,Private Notes," +
	"Read Count,Owned Copies"

// GoodreadsExportRow builds a 24-column export row with the commonly
// exercised fields filled in. Values must not contain commas.
func GoodreadsExportRow(id, title, author, pages, bookshelves, exclusive string) string {
	cols := make([]string, 24)
	cols[0] = id
	cols[1] = title
	cols[2] = author
	cols[8] = "4.10"
	cols[11] = pages
	cols[15] = "2024-01-01"
	cols[16] = bookshelves
	cols[18] = exclusive
	return strings.Join(cols, ",")
}

// WriteGoodreadsExport writes an export CSV with the given rows into the
// test environment and returns its absolute path.
func (e *TestEnv) WriteGoodreadsExport(name string, rows ...string) string {
	e.t.Helper()
	lines := append([]string{GoodreadsExportHeader}, rows...)
	e.WriteFileString(name, strings.Join(lines, "\n")+"\n")
	return e.Path(name)
}
