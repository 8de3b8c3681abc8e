package book

import (
	"sort"

	"github.com/lepinkainen/shelfsync/internal/goodreads"
)

// Sources names the enricher that supplied each filled field. Empty means
// the field kept its export value or stayed missing.
type Sources struct {
	Pages       string
	Year        string
	Description string
}

// Merged is a book with enrichment applied plus source attribution for the
// filled fields. Description lives here because the export has no column
// for it.
type Merged struct {
	Book        goodreads.Book
	Description string
	Sources     Sources
}

// Merge fills the book's missing fields from the highest-priority source
// that has them. Export data always wins: a field the export already set is
// never overwritten.
func Merge(book goodreads.Book, results []Result) Merged {
	sort.Slice(results, func(i, j int) bool {
		return results[i].Priority < results[j].Priority
	})

	merged := Merged{Book: book}
	for _, result := range results {
		if result.Data == nil {
			continue
		}

		if merged.Book.NumberOfPages == nil && result.Data.Pages != nil && *result.Data.Pages > 0 {
			merged.Book.NumberOfPages = result.Data.Pages
			merged.Sources.Pages = result.Source
		}
		if merged.Book.PublicationYear() == nil && result.Data.Year != nil {
			merged.Book.YearPublished = result.Data.Year
			merged.Sources.Year = result.Source
		}
		if merged.Description == "" && result.Data.Description != nil && *result.Data.Description != "" {
			merged.Description = *result.Data.Description
			merged.Sources.Description = result.Source
		}
	}
	return merged
}
