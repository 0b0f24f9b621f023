package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultAPIVersion  = "2024-10"
	defaultPageSize    = 250
	defaultPageDelay   = 100 * time.Millisecond
	defaultHTTPTimeout = 30 * time.Second
)

// Client is a read-side admin API client for one remote platform. It owns a
// RateLimiter instance, so limits are scoped to this client and its shops.
type Client struct {
	httpClient *http.Client
	limiter    *RateLimiter
	apiVersion string
	pageSize   int
	pageDelay  time.Duration
	scheme     string
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client. The client's timeout
// is the fixed per-request timeout; a timed-out request is a transport
// failure like any other.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPageDelay overrides the fixed delay inserted between page requests.
func WithPageDelay(d time.Duration) Option {
	return func(c *Client) { c.pageDelay = d }
}

// WithScheme overrides the URL scheme. Only plain-HTTP test servers need it.
func WithScheme(scheme string) Option {
	return func(c *Client) { c.scheme = scheme }
}

// NewClient creates a client with its own rate limiter.
func NewClient(logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		limiter:    NewRateLimiter(logger),
		apiVersion: defaultAPIVersion,
		pageSize:   defaultPageSize,
		pageDelay:  defaultPageDelay,
		scheme:     "https",
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// fetchPage requests one page of a resource collection and returns its items
// together with the cursor for the following page ("" when this is the last
// page). Any transport error or non-2xx status fails the page.
func (c *Client) fetchPage(ctx context.Context, shop, accessToken, resource, cursor string) ([]json.RawMessage, string, error) {
	pageURL := fmt.Sprintf("%s://%s/admin/api/%s/%s.json", c.scheme, shop, c.apiVersion, resource)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", accessToken)
	req.Header.Set("Content-Type", "application/json")

	q := req.URL.Query()
	q.Set("limit", fmt.Sprintf("%d", c.pageSize))
	if cursor != "" {
		q.Set("page_info", cursor)
	}
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch %s page: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return nil, "", fmt.Errorf("%s page request failed: %d - %s", resource, resp.StatusCode, string(body))
	}

	var envelope map[string][]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, "", fmt.Errorf("failed to decode %s page: %w", resource, err)
	}

	return envelope[resource], nextPageCursor(resp.Header.Get("Link")), nil
}

// nextPageCursor extracts the page_info cursor from a Link header's
// rel="next" relation. An empty result means there is no next page.
func nextPageCursor(link string) string {
	if link == "" {
		return ""
	}
	for _, part := range strings.Split(link, ",") {
		if !strings.Contains(part, `rel="next"`) {
			continue
		}
		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start < 0 || end < 0 || end <= start {
			continue
		}
		u, err := url.Parse(part[start+1 : end])
		if err != nil {
			continue
		}
		return u.Query().Get("page_info")
	}
	return ""
}
