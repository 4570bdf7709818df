package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/okian/nbapicks/internal/domain/calendar"
	"github.com/okian/nbapicks/internal/domain/model"
)

// userHeader carries the caller identity.
const userHeader = "X-User-ID"

// envelope mirrors the server's response wrapper.
type envelope struct {
	OK     bool            `json:"ok"`
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
	Code   string          `json:"code"`
}

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	baseURL string
	userID  string
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(baseURL, userID string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		userID:  userID,
	}
}

// Get performs a GET request with the caller identity attached.
func (c *HTTPClient) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userID != "" {
		req.Header.Set(userHeader, c.userID)
	}
	return c.client.Do(req)
}

// Recommendations fetches one day's recommendations and unwraps the envelope.
func (c *HTTPClient) Recommendations(ctx context.Context, d calendar.Date) (*model.Recommendations, error) {
	resp, err := c.Get(ctx, "/api/recommendations?date="+url.QueryEscape(d.Compact()))
	if err != nil {
		return nil, fmt.Errorf("request recommendations: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decode envelope (status %d): %w", resp.StatusCode, err)
	}
	if !env.OK {
		return nil, fmt.Errorf("%w: status %d code %q: %s", ErrRequestFailed, resp.StatusCode, env.Code, env.Error)
	}
	var rec model.Recommendations
	if err := json.Unmarshal(env.Result, &rec); err != nil {
		return nil, fmt.Errorf("decode recommendations: %w", err)
	}
	return &rec, nil
}
