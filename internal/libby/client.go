// Package libby provides a client for the OverDrive services behind the
// Libby app: thunder (catalog search), vandal (tags) and sentry (cards).
package libby

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lepinkainen/shelfsync/internal/ratelimit"
)

const (
	defaultThunderBaseURL = "https://thunder.api.overdrive.com"
	defaultVandalBaseURL  = "https://vandal.svc.overdrive.com"
	defaultSentryBaseURL  = "https://sentry-read.svc.overdrive.com"
	defaultMaxAttempts    = 3
	defaultRatePerSecond  = 4
	defaultPerPage        = 24

	// websiteId the Libby web app sends with tagging writes; card sync
	// overrides it when the service reports one.
	defaultWebsiteID = "83"

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:109.0) Gecko/20100101 Firefox/114.0"
)

var (
	// ErrNotFound is returned when no search result passes the author check.
	ErrNotFound = errors.New("no matching catalog item")
	// ErrTagNotFound is returned when the account has no tag with the requested name.
	ErrTagNotFound = errors.New("tag not found")
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Client is an authenticated OverDrive/Libby API client bound to a single
// library card.
type Client struct {
	token          string
	cardID         string
	advantageKey   string
	websiteID      string
	thunderBaseURL string
	vandalBaseURL  string
	sentryBaseURL  string
	httpClient     HTTPDoer
	rateLimiter    *ratelimit.Limiter
	retryAttempts  int
}

// credentials is the on-disk shape of the Libby credentials file. The
// identity token comes from the Authorization header of any logged-in
// libbyapp.com request; card_id may be omitted on single-card accounts.
type credentials struct {
	Identity string `yaml:"identity"`
	CardID   string `yaml:"card_id"`
}

func loadCredentials(path string) (*credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var creds credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials %s: %w", path, err)
	}
	if strings.TrimSpace(creds.Identity) == "" {
		return nil, fmt.Errorf("credentials file %s has no identity token", path)
	}
	creds.Identity = strings.TrimSpace(creds.Identity)
	return &creds, nil
}

// NewClient creates a Libby client from the credentials file at credsPath and
// resolves the library card via the sentry card sync, so it needs network
// access (or test servers via WithBaseURLs) before it returns.
func NewClient(ctx context.Context, credsPath string, opts ...Option) (*Client, error) {
	creds, err := loadCredentials(credsPath)
	if err != nil {
		return nil, err
	}

	client := &Client{
		token:          creds.Identity,
		cardID:         creds.CardID,
		websiteID:      defaultWebsiteID,
		thunderBaseURL: defaultThunderBaseURL,
		vandalBaseURL:  defaultVandalBaseURL,
		sentryBaseURL:  defaultSentryBaseURL,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
		rateLimiter:    ratelimit.New("libby", defaultRatePerSecond),
		retryAttempts:  defaultMaxAttempts,
	}

	for _, opt := range opts {
		opt(client)
	}

	if err := client.syncCard(ctx); err != nil {
		return nil, err
	}

	return client, nil
}

// syncCard resolves the configured card into the advantage key that search
// URLs are scoped by. Accounts with a single card need no card_id; otherwise
// the configured card must exist.
func (c *Client) syncCard(ctx context.Context) error {
	var response struct {
		Cards []struct {
			CardID       string `json:"cardId"`
			AdvantageKey string `json:"advantageKey"`
			CardName     string `json:"cardName"`
			Library      struct {
				WebsiteID json.Number `json:"websiteId"`
			} `json:"library"`
		} `json:"cards"`
	}

	if err := c.getJSON(ctx, c.sentryBaseURL+"/chip/sync", &response); err != nil {
		return fmt.Errorf("card sync: %w", err)
	}

	idx := -1
	switch {
	case c.cardID != "":
		for i, card := range response.Cards {
			if card.CardID == c.cardID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("card sync: card %s not found (account has %d cards)", c.cardID, len(response.Cards))
		}
	case len(response.Cards) == 1:
		idx = 0
	case len(response.Cards) == 0:
		return errors.New("card sync: account has no library cards")
	default:
		ids := make([]string, len(response.Cards))
		for i, card := range response.Cards {
			ids[i] = card.CardID
		}
		return fmt.Errorf("card sync: account has multiple cards, set card_id to one of %s", strings.Join(ids, ", "))
	}

	card := response.Cards[idx]
	c.cardID = card.CardID
	c.advantageKey = card.AdvantageKey
	if ws := card.Library.WebsiteID.String(); ws != "" {
		c.websiteID = ws
	}

	slog.Debug("Libby client ready",
		"card", card.CardName,
		"card_id", card.CardID,
		"library", card.AdvantageKey)
	return nil
}

// AdvantageKey returns the advantage key of the resolved library.
func (c *Client) AdvantageKey() string {
	return c.advantageKey
}

// CardID returns the id of the library card the client is bound to.
func (c *Client) CardID() string {
	return c.cardID
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(client *Client) {
		if doer != nil {
			client.httpClient = doer
		}
	}
}

// WithBaseURLs overrides the thunder, vandal and sentry service endpoints.
// Empty strings leave the corresponding default in place.
func WithBaseURLs(thunder, vandal, sentry string) Option {
	return func(client *Client) {
		if thunder != "" {
			client.thunderBaseURL = strings.TrimSuffix(thunder, "/")
		}
		if vandal != "" {
			client.vandalBaseURL = strings.TrimSuffix(vandal, "/")
		}
		if sentry != "" {
			client.sentryBaseURL = strings.TrimSuffix(sentry, "/")
		}
	}
}

// WithRetryAttempts sets the number of attempts for failed read requests.
func WithRetryAttempts(attempts int) Option {
	return func(client *Client) {
		if attempts > 0 {
			client.retryAttempts = attempts
		}
	}
}

// WithRateLimiter sets a custom rate limiter for the client.
func WithRateLimiter(limiter *ratelimit.Limiter) Option {
	return func(client *Client) {
		if limiter != nil {
			client.rateLimiter = limiter
		}
	}
}
