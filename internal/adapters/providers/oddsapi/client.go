// Package oddsapi fetches the league-wide NBA odds snapshot from The Odds
// API v4.
package oddsapi

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/nbapicks/internal/adapters/providers"
	"github.com/okian/nbapicks/internal/domain/odds"
)

// Name is the provider tag used in logs and metrics.
const Name = "oddsapi"

// ErrMissingAPIKey is returned without a network call when no key is set.
var ErrMissingAPIKey = errors.New("odds api key is not configured")

// Usage mirrors the quota headers returned with every response.
type Usage struct {
	RequestsRemaining *int `json:"requestsRemaining,omitempty"`
	RequestsUsed      *int `json:"requestsUsed,omitempty"`
	RequestsLastCost  *int `json:"requestsLastCost,omitempty"`
}

// Snapshot is one live fetch of every event on the board.
type Snapshot struct {
	Events    []odds.Event `json:"events"`
	FetchedAt time.Time    `json:"fetchedAt"`
	Status    int          `json:"status,omitempty"`
	Usage     Usage        `json:"usage"`
}

// Client queries the odds endpoint.
type Client struct {
	fetcher *providers.Fetcher
	baseURL string
	apiKey  string
	regions string
	markets string
	now     func() time.Time
}

// New creates a client for the odds endpoint at baseURL.
func New(baseURL, apiKey, regions, markets string, opts ...providers.Option) *Client {
	return &Client{
		fetcher: providers.NewFetcher(Name, opts...),
		baseURL: baseURL,
		apiKey:  apiKey,
		regions: regions,
		markets: markets,
		now:     time.Now,
	}
}

// CacheKey identifies the request independent of the API key.
func (c *Client) CacheKey() string {
	return "odds:" + c.regions + ":" + c.markets
}

// URL builds the request URL.
func (c *Client) URL() string {
	q := url.Values{}
	q.Set("apiKey", c.apiKey)
	q.Set("regions", c.regions)
	q.Set("markets", c.markets)
	q.Set("oddsFormat", "american")
	q.Set("dateFormat", "iso")
	return c.baseURL + "?" + q.Encode()
}

// Fetch performs one live request.
func (c *Client) Fetch(ctx context.Context) (Snapshot, error) {
	if c.apiKey == "" {
		return Snapshot{}, ErrMissingAPIKey
	}
	var events []odds.Event
	resp, err := c.fetcher.GetJSON(ctx, c.URL(), &events)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Events:    events,
		FetchedAt: c.now().UTC(),
		Status:    resp.Status,
		Usage:     usageFrom(resp.Header),
	}, nil
}

func usageFrom(h http.Header) Usage {
	num := func(k string) *int {
		if v, err := strconv.Atoi(h.Get(k)); err == nil {
			return &v
		}
		return nil
	}
	return Usage{
		RequestsRemaining: num("x-requests-remaining"),
		RequestsUsed:      num("x-requests-used"),
		RequestsLastCost:  num("x-requests-last"),
	}
}
