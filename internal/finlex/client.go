package finlex

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Finlex Open Data API root.
	DefaultBaseURL = "https://opendata.finlex.fi" + APIRoot

	// UserAgent identifies this client to the API.
	UserAgent = "finlex-cli/0.1.0"

	// DefaultTimeout is the per-request HTTP timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRequestInterval is the minimum wall-clock gap between
	// consecutive outbound requests.
	DefaultRequestInterval = 5 * time.Second

	// MaxRetries is the number of retries for transient errors.
	MaxRetries = 3

	// RetryDelay is the initial delay between retries.
	RetryDelay = time.Second
)

// Accept header values for the representations the API serves.
const (
	AcceptJSON = "application/json"
	AcceptXML  = "application/xml"
	AcceptPDF  = "application/pdf"
	AcceptZIP  = "application/zip"
)

// Response is the outcome of a single GET after pacing and retries.
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the response carries a 200 status.
func (r *Response) OK() bool {
	return r.StatusCode == http.StatusOK
}

// Getter issues paced, retried GET requests against the API.
// Components accept this interface so tests can substitute a stub.
type Getter interface {
	Get(ctx context.Context, path string, params url.Values, accept string) (*Response, error)
}

// Client is the HTTP transport for the Finlex Open Data API. One request is
// in flight at a time; a rate limiter with burst 1 enforces the minimum
// interval between requests, and transient failures (429, 5xx, network
// errors) are retried with exponential backoff.
type Client struct {
	baseURL    string
	httpClient *http.Client
	pacer      *rate.Limiter
	maxRetries int
	logger     *slog.Logger
}

// Ensure Client implements the interface.
var _ Getter = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL. Useful for tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithRequestInterval sets the pacing gate between consecutive requests.
// A zero or negative interval disables pacing.
func WithRequestInterval(interval time.Duration) ClientOption {
	return func(c *Client) {
		if interval <= 0 {
			c.pacer = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.pacer = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// WithMaxRetries sets the retry budget for transient failures.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a transport with default pacing and retry behaviour.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		pacer:      rate.NewLimiter(rate.Every(DefaultRequestInterval), 1),
		maxRetries: MaxRetries,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get issues a GET against the API. It blocks on the pacing gate before
// every attempt, retries transient failures, and returns the final response
// whatever its status. An error is returned only when no HTTP response was
// obtained at all.
func (c *Client) Get(ctx context.Context, path string, params url.Values, accept string) (*Response, error) {
	reqURL := c.baseURL + path
	if !strings.HasPrefix(path, "/") {
		reqURL = c.baseURL + "/" + path
	}
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := RetryDelay << (attempt - 1)
			c.logger.Debug("retrying request", "url", reqURL, "attempt", attempt, "delay", delay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := c.pacer.Wait(ctx); err != nil {
			return nil, fmt.Errorf("pacing wait: %w", err)
		}

		resp, err := c.do(ctx, reqURL, accept)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue
		}

		if retryableStatus(resp.StatusCode) && attempt < c.maxRetries {
			c.logger.Warn("transient response", "url", reqURL, "status", resp.StatusCode)
			continue
		}

		c.logger.Debug("GET", "url", reqURL, "accept", accept,
			"status", resp.StatusCode, "bytes", len(resp.Body))
		return resp, nil
	}

	return nil, fmt.Errorf("%w: GET %s: %v", ErrRetriesExhausted, reqURL, lastErr)
}

func (c *Client) do(ctx context.Context, reqURL, accept string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", accept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// retryableStatus reports whether a status code is worth another attempt.
func retryableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
