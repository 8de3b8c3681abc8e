package goodreads

import (
	"sort"

	"github.com/lepinkainen/shelfsync/internal/csvutil"
	"github.com/lepinkainen/shelfsync/internal/match"
)

func loadBooks(path string) ([]Book, error) {
	return csvutil.ParseFile(path, parseBookRecord, csvutil.Options{
		FieldsPerRecord: exportColumns,
		SkipInvalid:     true,
	})
}

// LoadShelf returns the books on the named shelf.
func LoadShelf(path, shelf string) ([]Book, error) {
	books, err := loadBooks(path)
	if err != nil {
		return nil, err
	}

	var matched []Book
	for _, book := range books {
		if book.OnShelf(shelf) {
			matched = append(matched, book)
		}
	}
	return matched, nil
}

// LoadAll returns every book in the export grouped by shelf name. A book
// appears under its exclusive shelf and under each of its bookshelves.
func LoadAll(path string) (map[string][]Book, error) {
	books, err := loadBooks(path)
	if err != nil {
		return nil, err
	}

	byShelf := make(map[string][]Book)
	for _, book := range books {
		for _, shelf := range book.shelfNames() {
			byShelf[shelf] = append(byShelf[shelf], book)
		}
	}
	return byShelf, nil
}

// Shelves returns the distinct shelf names in the export with book counts,
// largest shelf first.
func Shelves(path string) ([]Shelf, error) {
	byShelf, err := LoadAll(path)
	if err != nil {
		return nil, err
	}

	shelves := make([]Shelf, 0, len(byShelf))
	for name, books := range byShelf {
		shelves = append(shelves, Shelf{Name: name, Count: len(books)})
	}
	sort.Slice(shelves, func(i, j int) bool {
		if shelves[i].Count != shelves[j].Count {
			return shelves[i].Count > shelves[j].Count
		}
		return shelves[i].Name < shelves[j].Name
	})
	return shelves, nil
}

// IntersectByTitle returns the books of a whose normalized title also
// appears in b.
func IntersectByTitle(a, b []Book) []Book {
	titles := make(map[string]bool, len(b))
	for _, book := range b {
		titles[match.NormalizeTitle(book.Title)] = true
	}

	var both []Book
	for _, book := range a {
		if titles[match.NormalizeTitle(book.Title)] {
			both = append(both, book)
		}
	}
	return both
}
