package browse

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"github.com/lepinkainen/shelfsync/internal/batch"
	"github.com/lepinkainen/shelfsync/internal/formatcache"
	"github.com/lepinkainen/shelfsync/internal/goodreads"
	"github.com/lepinkainen/shelfsync/internal/libby"
)

const (
	searchConcurrency = 25
	formatConcurrency = 10
)

// Record is one row of the browse report. The JSON field names are the
// report's data contract: the embedded template, the JSON file, and the
// datasette table all consume them.
type Record struct {
	Title             string   `json:"title"`
	Author            string   `json:"author"`
	Pages             *int     `json:"pages"`
	Shelves           []string `json:"goodreads_shelves"`
	LibbyID           string   `json:"libby_id"`
	GoodreadsID       int      `json:"goodreads_id"`
	IsAvailable       bool     `json:"is_available"`
	EstimatedWaitDays *int     `json:"estimated_wait_days"`
	HoldsCount        *int     `json:"holds_count"`
	OwnedCopies       *int     `json:"owned_copies"`
	AvailableCopies   *int     `json:"available_copies"`
	HasKindle         *bool    `json:"has_kindle"`
	Formats           []string `json:"formats"`
	Subjects          []string `json:"subjects"`
	AverageRating     *float64 `json:"average_rating"`
	YearPublished     *int     `json:"year_published"`
	DateAdded         string   `json:"date_added"`
	PrivateNotes      string   `json:"private_notes"`
	CoverPath         string   `json:"cover_path,omitempty"`

	coverURL string
}

// matched pairs a shelf book with its catalog search result.
type matched struct {
	book  goodreads.Book
	match libby.CatalogMatch
}

// catalogClient is the slice of the catalog client a browse run needs.
type catalogClient interface {
	Search(ctx context.Context, opts libby.SearchOptions, title string, authors []string) (*libby.CatalogMatch, error)
	Formats(ctx context.Context, titleID string) ([]string, error)
}

type searchJob struct {
	idx  int
	book goodreads.Book
}

// searchCatalog resolves every book against the catalog with bounded
// concurrency. Books without a match are dropped; the returned pairs keep
// the input order.
func searchCatalog(ctx context.Context, client catalogClient, opts libby.SearchOptions, books []goodreads.Book) []matched {
	jobs := make([]searchJob, len(books))
	for i, book := range books {
		jobs[i] = searchJob{idx: i, book: book}
	}

	searched := batch.Map(ctx, searchConcurrency, jobs, func(ctx context.Context, job searchJob) (*libby.CatalogMatch, error) {
		return client.Search(ctx, opts, job.book.Title, job.book.Authors)
	})

	matches := make([]*libby.CatalogMatch, len(books))
	missing := 0
	for _, res := range searched {
		if res.Err != nil {
			missing++
			slog.Debug("No catalog match", "title", res.Item.book.Title, "error", res.Err)
			continue
		}
		matches[res.Item.idx] = res.Value
	}

	found := make([]matched, 0, len(books)-missing)
	for i, match := range matches {
		if match == nil {
			continue
		}
		found = append(found, matched{book: books[i], match: *match})
	}
	slog.Info("Catalog search finished", "found", len(found), "missing", missing)
	return found
}

// fillFormats fetches format lists for the matches the cache does not cover
// and persists the additions. A failed fetch leaves its id uncached so a
// later run retries it.
func fillFormats(ctx context.Context, client catalogClient, cache *formatcache.Cache, found []matched) error {
	ids := make([]string, len(found))
	for i, m := range found {
		ids[i] = m.match.ID
	}

	misses := cache.Misses(ids)
	if len(misses) > 0 {
		slog.Info("Fetching format details", "titles", len(misses))
		fetched := batch.Map(ctx, formatConcurrency, misses, func(ctx context.Context, titleID string) ([]string, error) {
			return client.Formats(ctx, titleID)
		})
		for _, res := range fetched {
			if res.Err != nil {
				slog.Warn("Failed to fetch formats", "id", res.Item, "error", res.Err)
				continue
			}
			cache.Put(res.Item, res.Value)
		}
	}

	return cache.Save()
}

// buildRecords merges each match with its cached formats and the book's
// shelf metadata. HasKindle stays nil for ids the cache does not cover.
func buildRecords(found []matched, cache *formatcache.Cache) []Record {
	records := make([]Record, 0, len(found))
	for _, m := range found {
		record := Record{
			Title:             m.match.Title,
			Author:            m.match.Creator,
			Pages:             m.book.NumberOfPages,
			Shelves:           m.book.Bookshelves,
			LibbyID:           m.match.ID,
			GoodreadsID:       m.book.ID,
			IsAvailable:       m.match.IsAvailable,
			EstimatedWaitDays: m.match.EstimatedWaitDays,
			HoldsCount:        m.match.HoldsCount,
			OwnedCopies:       m.match.OwnedCopies,
			AvailableCopies:   m.match.AvailableCopies,
			Subjects:          m.match.Subjects,
			AverageRating:     rating(m.book.AverageRating),
			YearPublished:     m.book.YearPublished,
			DateAdded:         m.book.DateAdded,
			PrivateNotes:      m.book.PrivateNotes,
			coverURL:          m.match.CoverURL,
		}
		if formats, ok := cache.Get(m.match.ID); ok {
			record.Formats = formats
			hasKindle := hasFormat(formats, libby.FormatKindle)
			record.HasKindle = &hasKindle
		}
		records = append(records, record)
	}
	return records
}

// sortRecords orders available titles first, then by ascending page count.
// Unknown page counts sort last within their availability group.
func sortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].IsAvailable != records[j].IsAvailable {
			return records[i].IsAvailable
		}
		return pagesOrMax(records[i].Pages) < pagesOrMax(records[j].Pages)
	})
}

func pagesOrMax(pages *int) int {
	if pages == nil {
		return math.MaxInt
	}
	return *pages
}

func hasFormat(formats []string, want string) bool {
	for _, format := range formats {
		if format == want {
			return true
		}
	}
	return false
}

// rating maps the export's zero value to "unrated".
func rating(value float64) *float64 {
	if value == 0 {
		return nil
	}
	return &value
}

// filterByShelves keeps books carrying every one of the wanted shelf tags.
func filterByShelves(books []goodreads.Book, shelves []string) []goodreads.Book {
	if len(shelves) == 0 {
		return books
	}
	var kept []goodreads.Book
	for _, book := range books {
		if onAllShelves(book, shelves) {
			kept = append(kept, book)
		}
	}
	return kept
}

func onAllShelves(book goodreads.Book, shelves []string) bool {
	for _, shelf := range shelves {
		if !book.OnShelf(shelf) {
			return false
		}
	}
	return true
}

// filterByPages drops books whose known page count falls outside the range.
// Unknown page counts always pass; a zero bound is unset.
func filterByPages(books []goodreads.Book, minPages, maxPages int) []goodreads.Book {
	if minPages <= 0 && maxPages <= 0 {
		return books
	}
	var kept []goodreads.Book
	for _, book := range books {
		if book.NumberOfPages != nil {
			if minPages > 0 && *book.NumberOfPages < minPages {
				continue
			}
			if maxPages > 0 && *book.NumberOfPages > maxPages {
				continue
			}
		}
		kept = append(kept, book)
	}
	return kept
}

func filterAvailable(records []Record) []Record {
	var kept []Record
	for _, record := range records {
		if record.IsAvailable {
			kept = append(kept, record)
		}
	}
	return kept
}

func availableCount(records []Record) int {
	count := 0
	for _, record := range records {
		if record.IsAvailable {
			count++
		}
	}
	return count
}
