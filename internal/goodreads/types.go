// Package goodreads loads books from a Goodreads library export CSV.
package goodreads

import "strings"

// exportColumns is the column count of a Goodreads library export.
const exportColumns = 24

// Book is one row of the export.
type Book struct {
	ID                      int
	Title                   string
	Authors                 []string
	ISBN                    string
	ISBN13                  string
	MyRating                int
	AverageRating           float64
	NumberOfPages           *int
	YearPublished           *int
	OriginalPublicationYear *int
	DateAdded               string
	Bookshelves             []string
	ExclusiveShelf          string
	PrivateNotes            string
}

// PublicationYear prefers the original publication year over the edition's.
func (b Book) PublicationYear() *int {
	if b.OriginalPublicationYear != nil {
		return b.OriginalPublicationYear
	}
	return b.YearPublished
}

// PrimaryAuthor returns the export's Author column value, empty if the row
// had none.
func (b Book) PrimaryAuthor() string {
	if len(b.Authors) == 0 {
		return ""
	}
	return b.Authors[0]
}

// OnShelf reports whether the book sits on the named shelf, either as its
// exclusive shelf or as one of its bookshelves. Comparison ignores case.
func (b Book) OnShelf(name string) bool {
	if strings.EqualFold(b.ExclusiveShelf, name) {
		return true
	}
	for _, shelf := range b.Bookshelves {
		if strings.EqualFold(shelf, name) {
			return true
		}
	}
	return false
}

// shelfNames lists the shelves the book is on, exclusive shelf first.
func (b Book) shelfNames() []string {
	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		if name == "" {
			return
		}
		key := strings.ToLower(name)
		if seen[key] {
			return
		}
		seen[key] = true
		names = append(names, name)
	}

	add(b.ExclusiveShelf)
	for _, shelf := range b.Bookshelves {
		add(shelf)
	}
	return names
}

// Shelf is a shelf name with the number of books on it.
type Shelf struct {
	Name  string
	Count int
}
