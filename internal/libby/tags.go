package libby

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var timeNow = time.Now

// Tags lists the tags on the account.
func (c *Client) Tags(ctx context.Context) ([]TagInfo, error) {
	var response struct {
		Tags []struct {
			Name          string `json:"name"`
			UUID          string `json:"uuid"`
			TotalTaggings int    `json:"totalTaggings"`
		} `json:"tags"`
	}

	if err := c.getJSON(ctx, c.vandalBaseURL+"/tags", &response); err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	tags := make([]TagInfo, 0, len(response.Tags))
	for _, tag := range response.Tags {
		tags = append(tags, TagInfo{
			Name:          tag.Name,
			UUID:          tag.UUID,
			TotalTaggings: tag.TotalTaggings,
		})
	}
	return tags, nil
}

// TagByName finds a tag by its exact name. The name is matched as-is, tag
// names on Libby are usually emoji sequences.
func (c *Client) TagByName(ctx context.Context, name string) (*TagInfo, error) {
	tags, err := c.Tags(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tags {
		if tags[i].Name == name {
			return &tags[i], nil
		}
	}
	return nil, fmt.Errorf("tag %q: %w", name, ErrTagNotFound)
}

// TaggedTitles drains the full list of titles carrying the tag, newest
// first, following pages until the reported total is reached.
func (c *Client) TaggedTitles(ctx context.Context, tag TagInfo) ([]TaggedTitle, error) {
	var titles []TaggedTitle

	for page := 1; ; page++ {
		var response struct {
			Tag struct {
				TotalTaggings int `json:"totalTaggings"`
				Taggings      []struct {
					TitleID     string `json:"titleId"`
					SortTitle   string `json:"sortTitle"`
					SortAuthor  string `json:"sortAuthor"`
					TitleFormat string `json:"titleFormat"`
				} `json:"taggings"`
			} `json:"tag"`
		}

		endpoint := fmt.Sprintf("%s/tag/%s/%s?enc=1&sort=newest&page=%d",
			c.vandalBaseURL, url.PathEscape(tag.UUID), encodeName(tag.Name), page)
		if err := c.getJSON(ctx, endpoint, &response); err != nil {
			return nil, fmt.Errorf("tagged titles for %q: %w", tag.Name, err)
		}

		if len(response.Tag.Taggings) == 0 {
			break
		}
		for _, tagging := range response.Tag.Taggings {
			titles = append(titles, TaggedTitle{
				TitleID: tagging.TitleID,
				Title:   tagging.SortTitle,
				Author:  tagging.SortAuthor,
				Format:  tagging.TitleFormat,
			})
		}
		if response.Tag.TotalTaggings <= 0 || len(titles) >= response.Tag.TotalTaggings {
			break
		}
	}

	return titles, nil
}

// Tag applies tag to a catalog title.
func (c *Client) Tag(ctx context.Context, tag TagInfo, titleID string) error {
	return c.mutateTagging(ctx, http.MethodPost, tag, titleID)
}

// Untag removes tag from a catalog title.
func (c *Client) Untag(ctx context.Context, tag TagInfo, titleID string) error {
	return c.mutateTagging(ctx, http.MethodDelete, tag, titleID)
}

func (c *Client) mutateTagging(ctx context.Context, method string, tag TagInfo, titleID string) error {
	endpoint := fmt.Sprintf("%s/tag/%s/%s/tagging/%s?enc=1",
		c.vandalBaseURL, url.PathEscape(tag.UUID), encodeName(tag.Name), url.PathEscape(titleID))

	payload := map[string]any{
		"tagging": map[string]any{
			"cardId":     c.cardID,
			"createTime": timeNow().Unix(),
			"titleId":    titleID,
			"websiteId":  c.websiteID,
		},
	}

	return c.sendJSON(ctx, method, endpoint, payload)
}
