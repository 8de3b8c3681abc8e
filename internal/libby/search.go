package libby

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/lepinkainen/shelfsync/internal/match"
)

// Search finds the first catalog item for title whose creator passes the
// author check. Library search handles subtitles poorly, so a title
// containing a colon is retried once with only the part before it when the
// full query returns nothing. Returns ErrNotFound when nothing acceptable
// comes back.
func (c *Client) Search(ctx context.Context, opts SearchOptions, title string, authors []string) (*CatalogMatch, error) {
	items, err := c.searchPage(ctx, opts, title)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		if head, _, found := strings.Cut(title, ":"); found {
			items, err = c.searchPage(ctx, opts, head)
			if err != nil {
				return nil, err
			}
		}
	}

	for _, item := range items {
		if match.AuthorMatch(authors, item.FirstCreatorName) {
			result := item.toCatalogMatch()
			return &result, nil
		}
	}

	return nil, fmt.Errorf("book %q: %w", title, ErrNotFound)
}

func (c *Client) searchPage(ctx context.Context, opts SearchOptions, query string) ([]searchResultItem, error) {
	var response struct {
		Items      []searchResultItem `json:"items"`
		TotalItems int                `json:"totalItems"`
	}

	if err := c.getJSON(ctx, c.searchURL(opts, query), &response); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return response.Items, nil
}

func (c *Client) searchURL(opts SearchOptions, query string) string {
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("mediaTypes", opts.MediaType.String())
	params.Set("perPage", strconv.Itoa(perPage))
	params.Set("page", "1")
	params.Set("x-client-id", "dewey")
	if opts.DeepSearch {
		params.Set("showOnlyAvailable", "false")
	}

	return fmt.Sprintf("%s/v2/libraries/%s/media?%s", c.thunderBaseURL, url.PathEscape(c.advantageKey), params.Encode())
}

// Formats returns the format ids of a catalog item, "ebook-kindle",
// "ebook-epub-adobe" and friends.
func (c *Client) Formats(ctx context.Context, titleID string) ([]string, error) {
	var response struct {
		Formats []struct {
			ID string `json:"id"`
		} `json:"formats"`
	}

	endpoint := fmt.Sprintf("%s/v2/media/%s?x-client-id=dewey", c.thunderBaseURL, url.PathEscape(titleID))
	if err := c.getJSON(ctx, endpoint, &response); err != nil {
		return nil, fmt.Errorf("formats for %s: %w", titleID, err)
	}

	formats := make([]string, 0, len(response.Formats))
	for _, format := range response.Formats {
		formats = append(formats, format.ID)
	}
	return formats, nil
}
