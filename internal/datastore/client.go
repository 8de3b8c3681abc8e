package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// DatasetteClient writes reports to a remote Datasette instance through the
// datasette-insert plugin.
type DatasetteClient struct {
	baseURL  string
	database string
	apiToken string
	client   *http.Client
}

// NewDatasetteClient returns a client that posts into the named database on
// the instance at baseURL. The token may be empty for open instances.
func NewDatasetteClient(baseURL, database, apiToken string) *DatasetteClient {
	return &DatasetteClient{
		baseURL:  baseURL,
		database: database,
		apiToken: apiToken,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Connect validates the configured URL. The real connection happens per
// request.
func (c *DatasetteClient) Connect(_ context.Context) error {
	parsed, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("invalid datasette URL %q: %w", c.baseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid datasette URL %q: want an http or https address", c.baseURL)
	}
	return nil
}

// WriteReport posts the rows to the insert endpoint. The primary key turns
// the insert into an upsert on the plugin side, so rerunning a report
// overwrites matching rows. The plugin creates missing tables itself, which
// is why the DDL is not sent.
func (c *DatasetteClient) WriteReport(ctx context.Context, report Report) error {
	if len(report.Rows) == 0 {
		return nil
	}

	endpoint, err := c.insertURL(report)
	if err != nil {
		return err
	}

	body, err := json.Marshal(map[string]any{"rows": report.Rows})
	if err != nil {
		return fmt.Errorf("failed to encode report rows: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build insert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post report to datasette: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("datasette insert returned status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}

func (c *DatasetteClient) insertURL(report Report) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid datasette URL %q: %w", c.baseURL, err)
	}
	u.Path = path.Join(u.Path, "-/insert", c.database, report.Table)
	if report.PrimaryKey != "" {
		query := u.Query()
		query.Set("pk", report.PrimaryKey)
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

// Close is a no-op; requests do not hold a connection open.
func (c *DatasetteClient) Close() error {
	return nil
}
