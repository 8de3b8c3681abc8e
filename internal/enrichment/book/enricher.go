// Package book fills gaps in export metadata from public book APIs. The
// export frequently leaves page counts and publication years blank, which
// makes the page-length sort in the browse report useless for those rows.
package book

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/lepinkainen/shelfsync/internal/goodreads"
	"github.com/lepinkainen/shelfsync/internal/ratelimit"
)

// Data is the metadata one source produced for a book. Pointer fields
// distinguish "not known" from zero.
type Data struct {
	Pages       *int
	Year        *int
	Description *string
}

// Enricher fetches book metadata from one external source.
type Enricher interface {
	// Name identifies the source in logs and source attributions.
	Name() string

	// Priority orders sources when merging. Lower wins.
	Priority() int

	// Ping reports whether the source is reachable.
	Ping(ctx context.Context) error

	// Enrich looks the book up. A nil Data with nil error means the source
	// does not know the book, which lets other sources try.
	Enrich(ctx context.Context, book goodreads.Book) (*Data, error)
}

// Result pairs fetched data with its source for merging.
type Result struct {
	Data     *Data
	Source   string
	Priority int
}

// EnrichBook queries every source for one book and merges what came back
// into it. A failing source is logged and skipped.
func EnrichBook(ctx context.Context, sources []Enricher, book goodreads.Book) Merged {
	var results []Result
	for _, source := range sources {
		data, err := source.Enrich(ctx, book)
		if err != nil {
			slog.Warn("Enrichment source failed", "source", source.Name(), "title", book.Title, "error", err)
			continue
		}
		if data == nil {
			slog.Debug("Source does not know the book", "source", source.Name(), "title", book.Title)
			continue
		}
		results = append(results, Result{Data: data, Source: source.Name(), Priority: source.Priority()})
	}
	return Merge(book, results)
}

// fetchJSON rate-limits, fetches and decodes one GET endpoint.
func fetchJSON(ctx context.Context, client *http.Client, limiter *ratelimit.Limiter, url string, target any) error {
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("API request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// yearFrom pulls the year out of a free-form publish date such as
// "1991-05-01" or "May 1, 1991". Returns nil when no four-digit run exists.
func yearFrom(date string) *int {
	run := 0
	for i := 0; i <= len(date); i++ {
		if i < len(date) && date[i] >= '0' && date[i] <= '9' {
			run++
			continue
		}
		if run == 4 {
			year := 0
			for _, c := range date[i-4 : i] {
				year = year*10 + int(c-'0')
			}
			return &year
		}
		run = 0
	}
	return nil
}

// normalizeISBN strips hyphens and spaces.
func normalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	return strings.ReplaceAll(isbn, " ", "")
}

// lookupISBN picks the ISBN to query with, preferring the 13-digit form.
func lookupISBN(book goodreads.Book) string {
	if book.ISBN13 != "" {
		return normalizeISBN(book.ISBN13)
	}
	return normalizeISBN(book.ISBN)
}
