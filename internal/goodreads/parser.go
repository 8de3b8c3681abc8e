package goodreads

import (
	"fmt"
	"strconv"
	"strings"
)

// parseBookRecord converts one export row into a Book. Column order follows
// the export format Goodreads has shipped for years: Book Id, Title, Author,
// Author l-f, Additional Authors, ISBN, ISBN13, My Rating, Average Rating,
// Publisher, Binding, Number of Pages, Year Published, Original Publication
// Year, Date Read, Date Added, Bookshelves, Bookshelves with positions,
// Exclusive Shelf, My Review, Spoiler, Private Notes, Read Count, Owned
// Copies.
func parseBookRecord(record []string) (Book, error) {
	if len(record) < exportColumns {
		return Book{}, fmt.Errorf("record has %d columns, want at least %d", len(record), exportColumns)
	}

	id, err := strconv.Atoi(record[0])
	if err != nil {
		return Book{}, fmt.Errorf("invalid book id %q: %w", record[0], err)
	}
	title := strings.TrimSpace(record[1])
	if title == "" {
		return Book{}, fmt.Errorf("book %d has no title", id)
	}

	pages := optionalInt(record[11])
	if pages != nil && *pages <= 0 {
		pages = nil
	}

	return Book{
		ID:                      id,
		Title:                   title,
		Authors:                 authorSet(record[2], record[4]),
		ISBN:                    sanitizeISBN(record[5]),
		ISBN13:                  sanitizeISBN(record[6]),
		MyRating:                intOrZero(record[7]),
		AverageRating:           floatOrZero(record[8]),
		NumberOfPages:           pages,
		YearPublished:           optionalInt(record[12]),
		OriginalPublicationYear: optionalInt(record[13]),
		DateAdded:               record[15],
		Bookshelves:             splitList(record[16]),
		ExclusiveShelf:          strings.TrimSpace(record[18]),
		PrivateNotes:            record[21],
	}, nil
}

// authorSet merges the Author column with the comma-separated Additional
// Authors column, primary author first, duplicates dropped case-insensitively.
func authorSet(author, additional string) []string {
	var authors []string
	seen := make(map[string]bool)
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		key := strings.ToLower(name)
		if seen[key] {
			return
		}
		seen[key] = true
		authors = append(authors, name)
	}

	add(author)
	for _, name := range strings.Split(additional, ",") {
		add(name)
	}
	return authors
}

// splitList splits a comma-separated export field, trimming each value.
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}

// sanitizeISBN strips the ="..." wrapper Goodreads uses to stop spreadsheets
// from eating leading zeroes.
func sanitizeISBN(value string) string {
	trimmed := strings.TrimSuffix(value, "\"")
	trimmed = strings.TrimPrefix(trimmed, "=\"")
	return trimmed
}

func intOrZero(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return n
}

func floatOrZero(value string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return f
}

func optionalInt(value string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return nil
	}
	return &n
}
