// Package providers holds the HTTP plumbing shared by upstream adapters.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/nbapicks/pkg/metrics"
)

const (
	defaultTimeout   = 8 * time.Second
	defaultUserAgent = "Mozilla/5.0 (compatible; nbapicks/1.0)"
	maxBody          = 32 << 20
)

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// Fetcher performs JSON GETs for one named provider. Each call gets its own
// timeout; calls never cancel each other.
type Fetcher struct {
	provider  string
	client    *http.Client
	timeout   time.Duration
	userAgent string
}

// NewFetcher creates a fetcher for provider.
func NewFetcher(provider string, opts ...Option) *Fetcher {
	f := &Fetcher{
		provider:  provider,
		client:    &http.Client{},
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Provider returns the provider name.
func (f *Fetcher) Provider() string { return f.provider }

// Response is a successful upstream reply.
type Response struct {
	Body   []byte
	Header http.Header
	Status int
}

// Get fetches url. Transport failures, timeouts and non-2xx statuses all
// return an *UpstreamError.
func (f *Fetcher) Get(ctx context.Context, url string) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	resp, err := f.do(ctx, url)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.RecordUpstreamFetch(f.provider, outcome, time.Since(start))
	return resp, err
}

func (f *Fetcher) do(ctx context.Context, url string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{}, &UpstreamError{Provider: f.provider, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return Response{}, &UpstreamError{Provider: f.provider, Err: fmt.Errorf("making request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return Response{}, &UpstreamError{Provider: f.provider, Err: fmt.Errorf("reading body: %w", err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, &UpstreamError{Provider: f.provider, Status: resp.StatusCode, Excerpt: Excerpt(string(body))}
	}
	return Response{Body: body, Header: resp.Header, Status: resp.StatusCode}, nil
}

// GetJSON fetches url and decodes the body into out.
func (f *Fetcher) GetJSON(ctx context.Context, url string, out any) (Response, error) {
	resp, err := f.Get(ctx, url)
	if err != nil {
		return resp, err
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return resp, fmt.Errorf("%s: %w: %w", f.provider, ErrDecode, err)
	}
	return resp, nil
}
