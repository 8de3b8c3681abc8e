package book

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/lepinkainen/shelfsync/internal/goodreads"
	"github.com/lepinkainen/shelfsync/internal/ratelimit"
)

const googleBooksPriority = 2

// GoogleBooks resolves books against the Google Books volumes API. Works
// without an API key; set GOOGLE_BOOKS_API_KEY for a higher quota.
type GoogleBooks struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
}

// Compile-time check that GoogleBooks implements Enricher.
var _ Enricher = (*GoogleBooks)(nil)

// NewGoogleBooks creates the enricher with production defaults.
func NewGoogleBooks() *GoogleBooks {
	return &GoogleBooks{
		baseURL:    "https://www.googleapis.com/books/v1",
		apiKey:     os.Getenv("GOOGLE_BOOKS_API_KEY"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    ratelimit.New("googlebooks", 1),
	}
}

// Name returns the human-readable name of this source.
func (e *GoogleBooks) Name() string {
	return "GoogleBooks"
}

// Priority returns the merge priority.
func (e *GoogleBooks) Priority() int {
	return googleBooksPriority
}

// Ping tests the connection with a search for a well-known ISBN.
func (e *GoogleBooks) Ping(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/volumes?q=isbn:9780140328721", e.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating ping request: %w", err)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("GoogleBooks ping failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GoogleBooks returned status %d", resp.StatusCode)
	}
	return nil
}

// Enrich queries the volumes endpoint by ISBN, or by title and author when
// the export has no ISBN for the book.
func (e *GoogleBooks) Enrich(ctx context.Context, book goodreads.Book) (*Data, error) {
	query := "isbn:" + lookupISBN(book)
	if lookupISBN(book) == "" {
		query = fmt.Sprintf("intitle:%q", book.Title)
		if author := book.PrimaryAuthor(); author != "" {
			query += fmt.Sprintf(" inauthor:%q", author)
		}
	}

	params := url.Values{}
	params.Set("q", query)
	if e.apiKey != "" {
		params.Set("key", e.apiKey)
	}
	endpoint := fmt.Sprintf("%s/volumes?%s", e.baseURL, params.Encode())

	var result struct {
		TotalItems int `json:"totalItems"`
		Items      []struct {
			VolumeInfo struct {
				PageCount     int    `json:"pageCount"`
				PublishedDate string `json:"publishedDate"`
				Description   string `json:"description"`
			} `json:"volumeInfo"`
		} `json:"items"`
	}
	if err := fetchJSON(ctx, e.httpClient, e.limiter, endpoint, &result); err != nil {
		return nil, err
	}

	if result.TotalItems == 0 || len(result.Items) == 0 {
		return nil, nil
	}

	info := result.Items[0].VolumeInfo
	data := &Data{Year: yearFrom(info.PublishedDate)}
	if info.PageCount > 0 {
		pages := info.PageCount
		data.Pages = &pages
	}
	if info.Description != "" {
		desc := info.Description
		data.Description = &desc
	}
	if data.Pages == nil && data.Year == nil && data.Description == nil {
		return nil, nil
	}
	return data, nil
}
