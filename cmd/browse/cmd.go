// Package browse renders a report of which shelf books the catalog can
// lend right now: every book on the shelf is searched, matched titles are
// merged with their cached format lists, and the result is written as a
// filterable HTML page plus optional JSON and datastore outputs.
package browse

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lepinkainen/shelfsync/internal/cmdutil"
	"github.com/lepinkainen/shelfsync/internal/config"
	"github.com/lepinkainen/shelfsync/internal/enrichment/book"
	"github.com/lepinkainen/shelfsync/internal/formatcache"
	"github.com/lepinkainen/shelfsync/internal/goodreads"
	"github.com/lepinkainen/shelfsync/internal/libby"
)

var (
	newClient = func(ctx context.Context) (catalogClient, error) {
		return libby.NewClient(ctx, config.CredentialsFile)
	}
	enrichSources = func() []book.Enricher {
		return []book.Enricher{book.NewOpenLibrary(), book.NewGoogleBooks()}
	}
)

// Params carries the browse command's settings after flag/config resolution.
type Params struct {
	CSVPath       string
	Shelf         string
	Shelves       []string
	MinPages      int
	MaxPages      int
	Media         string
	OutputDir     string
	WriteJSON     bool
	JSONOutput    string
	Covers        bool
	Enrich        bool
	AvailableOnly bool
}

// BrowseWithParams runs one report build. Books the catalog does not know
// are dropped from the report; only a failed cache save or output write
// aborts the run.
func BrowseWithParams(params Params) error {
	ctx := context.Background()

	mediaType, err := libby.ParseMediaType(params.Media)
	if err != nil {
		return err
	}

	shelf, err := cmdutil.ResolveShelf(params.Shelf, params.CSVPath)
	if err != nil {
		return err
	}

	books, err := goodreads.LoadShelf(params.CSVPath, shelf)
	if err != nil {
		return fmt.Errorf("failed to load shelf %q: %w", shelf, err)
	}
	slog.Info("Loaded shelf", "shelf", shelf, "books", len(books))

	books = filterByShelves(books, params.Shelves)
	if len(params.Shelves) > 0 {
		slog.Info("Applied shelf tag filter", "tags", params.Shelves, "books", len(books))
	}

	if params.Enrich {
		books = enrichBooks(ctx, books)
	}

	books = filterByPages(books, params.MinPages, params.MaxPages)
	if params.MinPages > 0 || params.MaxPages > 0 {
		slog.Info("Applied page filter", "books", len(books))
	}

	client, err := newClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create catalog client: %w", err)
	}

	// One cache-writing run at a time per cache file.
	unlock, err := formatcache.AcquireRunLock(config.CacheFile)
	if err != nil {
		return err
	}
	defer unlock()

	opts := libby.SearchOptions{MediaType: mediaType, DeepSearch: true}
	found := searchCatalog(ctx, client, opts, books)

	cache := formatcache.Load(config.CacheFile)
	if err := fillFormats(ctx, client, cache, found); err != nil {
		return fmt.Errorf("failed to save format cache: %w", err)
	}

	records := buildRecords(found, cache)
	sortRecords(records)
	if params.AvailableOnly {
		records = filterAvailable(records)
	}

	cfg := &cmdutil.BaseCommandConfig{
		OutputDir:  params.OutputDir,
		ConfigKey:  "browse",
		WriteJSON:  params.WriteJSON,
		JSONOutput: params.JSONOutput,
	}
	if err := cmdutil.SetupOutputDir(cfg); err != nil {
		return err
	}

	if params.Covers {
		downloadCovers(ctx, records, cfg.OutputDir)
	}

	return writeOutputs(ctx, records, cfg)
}

// enrichBooks fills missing page counts and years from public book APIs so
// the page filter and sort see them. Unreachable sources drop out up front;
// a failed lookup leaves the book as exported.
func enrichBooks(ctx context.Context, books []goodreads.Book) []goodreads.Book {
	var live []book.Enricher
	for _, source := range enrichSources() {
		if err := source.Ping(ctx); err != nil {
			slog.Warn("Enrichment source unreachable", "source", source.Name(), "error", err)
			continue
		}
		live = append(live, source)
	}
	if len(live) == 0 {
		slog.Warn("No enrichment sources reachable, skipping enrichment")
		return books
	}

	enriched := make([]goodreads.Book, len(books))
	for i, b := range books {
		merged := book.EnrichBook(ctx, live, b)
		enriched[i] = merged.Book
	}
	return enriched
}
