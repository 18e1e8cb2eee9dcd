package menu

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/vitalcare/vitalcare/internal/auth"
)

// Fetcher retrieves the principal-specific menu structure.
type Fetcher interface {
	Fetch(ctx context.Context, principal *auth.Principal) (Menu, error)
}

// Client fetches menus from the clinic API, forwarding the principal's
// bearer credential.
type Client struct {
	base   string
	client *http.Client
	logger *slog.Logger
}

// NewClient constructs a Client. timeout bounds each fetch; the caller's
// context can cut it shorter.
func NewClient(base string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		base:   base,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Fetch returns the principal's menu. Errors are returned so access
// checks can fail closed on them; rendering paths that prefer
// degradation use FetchOrEmpty.
func (c *Client) Fetch(ctx context.Context, principal *auth.Principal) (Menu, error) {
	if principal == nil || principal.Token == "" {
		return Menu{}, fmt.Errorf("menu: no credential to fetch with")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/menus/me", nil)
	if err != nil {
		return Menu{}, err
	}
	req.Header.Set("Authorization", "Bearer "+principal.Token)
	req.Header.Set("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return Menu{}, fmt.Errorf("menu: fetch: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return Menu{}, fmt.Errorf("menu: fetch status %d", res.StatusCode)
	}

	var fetched Menu
	if err := json.NewDecoder(res.Body).Decode(&fetched); err != nil {
		return Menu{}, fmt.Errorf("menu: decode: %w", err)
	}
	return fetched, nil
}

// FetchOrEmpty degrades any fetch failure to an empty menu so navigation
// renders as "no items" instead of crashing. The failure is logged, never
// surfaced.
func (c *Client) FetchOrEmpty(ctx context.Context, principal *auth.Principal) Menu {
	fetched, err := c.Fetch(ctx, principal)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("menu fetch degraded to empty", slog.Any("error", err))
		}
		return Menu{}
	}
	return fetched
}

var _ Fetcher = (*Client)(nil)
