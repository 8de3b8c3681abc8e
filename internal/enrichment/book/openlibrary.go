package book

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/lepinkainen/shelfsync/internal/goodreads"
	"github.com/lepinkainen/shelfsync/internal/ratelimit"
)

const openLibraryPriority = 1

// OpenLibrary resolves books against the Open Library API, by ISBN when the
// export has one and by title/author search otherwise.
type OpenLibrary struct {
	baseURL    string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
}

// Compile-time check that OpenLibrary implements Enricher.
var _ Enricher = (*OpenLibrary)(nil)

// NewOpenLibrary creates the enricher with production defaults.
func NewOpenLibrary() *OpenLibrary {
	return &OpenLibrary{
		baseURL:    "https://openlibrary.org",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    ratelimit.New("openlibrary", 1),
	}
}

// Name returns the human-readable name of this source.
func (e *OpenLibrary) Name() string {
	return "OpenLibrary"
}

// Priority returns the merge priority. Open Library wins over Google Books.
func (e *OpenLibrary) Priority() int {
	return openLibraryPriority
}

// Ping tests the connection to Open Library.
func (e *OpenLibrary) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL, nil)
	if err != nil {
		return fmt.Errorf("creating ping request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("OpenLibrary ping failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("OpenLibrary returned status %d", resp.StatusCode)
	}
	return nil
}

// Enrich tries an ISBN lookup first and falls back to a title/author
// search, which tends to find books the export lists under an ISBN Open
// Library has never seen.
func (e *OpenLibrary) Enrich(ctx context.Context, book goodreads.Book) (*Data, error) {
	if isbn := lookupISBN(book); isbn != "" {
		data, err := e.byISBN(ctx, isbn)
		if err != nil {
			return nil, err
		}
		if data != nil {
			return data, nil
		}
	}
	return e.bySearch(ctx, book)
}

// openLibraryBook matches the /api/books response entry.
type openLibraryBook struct {
	NumberOfPages int    `json:"number_of_pages"`
	PublishDate   string `json:"publish_date"`
	Description   any    `json:"description"`
}

func (e *OpenLibrary) byISBN(ctx context.Context, isbn string) (*Data, error) {
	endpoint := fmt.Sprintf("%s/api/books?bibkeys=ISBN:%s&format=json&jscmd=data", e.baseURL, isbn)

	var result map[string]openLibraryBook
	if err := fetchJSON(ctx, e.httpClient, e.limiter, endpoint, &result); err != nil {
		return nil, err
	}

	entry, ok := result["ISBN:"+isbn]
	if !ok {
		return nil, nil
	}

	data := &Data{Year: yearFrom(entry.PublishDate)}
	if entry.NumberOfPages > 0 {
		pages := entry.NumberOfPages
		data.Pages = &pages
	}
	if desc := descriptionText(entry.Description); desc != "" {
		data.Description = &desc
	}
	if data.Pages == nil && data.Year == nil && data.Description == nil {
		return nil, nil
	}
	return data, nil
}

func (e *OpenLibrary) bySearch(ctx context.Context, book goodreads.Book) (*Data, error) {
	params := url.Values{}
	params.Set("title", book.Title)
	if author := book.PrimaryAuthor(); author != "" {
		params.Set("author", author)
	}
	params.Set("limit", "1")
	endpoint := fmt.Sprintf("%s/search.json?%s", e.baseURL, params.Encode())

	var result struct {
		NumFound int `json:"numFound"`
		Docs     []struct {
			PagesMedian      int `json:"number_of_pages_median"`
			FirstPublishYear int `json:"first_publish_year"`
		} `json:"docs"`
	}
	if err := fetchJSON(ctx, e.httpClient, e.limiter, endpoint, &result); err != nil {
		return nil, err
	}

	if result.NumFound == 0 || len(result.Docs) == 0 {
		return nil, nil
	}

	doc := result.Docs[0]
	data := &Data{}
	if doc.PagesMedian > 0 {
		pages := doc.PagesMedian
		data.Pages = &pages
	}
	if doc.FirstPublishYear != 0 {
		year := doc.FirstPublishYear
		data.Year = &year
	}
	if data.Pages == nil && data.Year == nil {
		return nil, nil
	}
	return data, nil
}

// descriptionText handles the two shapes Open Library uses for
// descriptions: a plain string or an object with a "value" key.
func descriptionText(desc any) string {
	switch v := desc.(type) {
	case string:
		return v
	case map[string]any:
		if value, ok := v["value"].(string); ok {
			return value
		}
	}
	return ""
}
