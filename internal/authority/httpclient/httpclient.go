// Package httpclient is the shared transport for authority adapters: one
// client per authority with a base URL, a user agent, a request timeout, and
// a token-bucket rate limit. It never retries; a failed request is reported to
// the resolver, which decides what the failure means for the search.
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"sppin/internal/services"
)

const maxErrorBody = 512

// Client issues GET requests against one authority.
type Client struct {
	authority  string
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// APIError represents a non-2xx HTTP response.
type APIError struct {
	StatusCode int
	Body       string
	Latency    time.Duration
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d (latency=%v): %s", e.StatusCode, e.Latency, e.Body)
}

// Response is a successful reply.
type Response struct {
	StatusCode int
	Body       []byte
	Latency    time.Duration
}

// Empty reports whether the reply carried no payload.
func (r Response) Empty() bool {
	return r.StatusCode == http.StatusNoContent || len(strings.TrimSpace(string(r.Body))) == 0
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit caps the request rate. Zero or negative disables limiting.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(c *Client) {
		if requestsPerSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		c.userAgent = strings.TrimSpace(agent)
	}
}

// New creates a client for the named authority.
func New(authority, baseURL string, opts ...Option) (*Client, error) {
	authority = strings.TrimSpace(authority)
	if authority == "" {
		return nil, errors.New("authority name required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("%s base url required", authority)
	}
	client := &Client{
		authority:  authority,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// BaseURL returns the normalized base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// URL joins path onto the base URL with exactly one slash between them, so
// "?q=..." and "/?q=..." produce the same URL. The path is otherwise used
// verbatim so adapters control their own escaping.
func (c *Client) URL(path string) string {
	if path == "" {
		return c.baseURL
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// Get fetches rawURL. Non-2xx replies return *APIError wrapped as a transport
// failure.
func (c *Client) Get(ctx context.Context, rawURL string) (Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Response{}, services.Wrap(services.ErrTransport, c.authority, "rate limit", "wait cancelled", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Response{}, services.Wrap(services.ErrTransport, c.authority, "build request", rawURL, err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return Response{}, services.Wrap(services.ErrTransport, c.authority, "execute request", fmt.Sprintf("latency=%v", latency), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, services.Wrap(services.ErrTransport, c.authority, "read body", fmt.Sprintf("latency=%v", latency), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyStr := string(body)
		if len(bodyStr) > maxErrorBody {
			bodyStr = bodyStr[:maxErrorBody]
		}
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: bodyStr, Latency: latency}
		return Response{}, services.Wrap(services.ErrTransport, c.authority, "request", "", apiErr)
	}
	return Response{StatusCode: resp.StatusCode, Body: body, Latency: latency}, nil
}

// GetJSON fetches rawURL and decodes the payload into a generic value. An
// empty reply decodes to nil.
func (c *Client) GetJSON(ctx context.Context, rawURL string) (any, Response, error) {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, Response{}, err
	}
	if resp.Empty() {
		return nil, resp, nil
	}
	var payload any
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, resp, services.Wrap(services.ErrDecode, c.authority, "decode response", "", err)
	}
	return payload, resp, nil
}

// AsAPIError unwraps err to an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
