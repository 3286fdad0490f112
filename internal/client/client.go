package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/remotefs/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/remotefs/internal/infrastructure/tracing"
)

// DefaultBaseURL matches the server's default listen address.
const DefaultBaseURL = "http://127.0.0.1:3030"

var (
	// ErrNotFound is returned for every rejection the server reports as 404.
	ErrNotFound = errors.New("remote: not found")
	// ErrTooLarge is returned when an upload exceeds the server's body limit.
	ErrTooLarge = errors.New("remote: payload too large")
	// ErrLengthRequired is returned when an upload did not declare its length.
	ErrLengthRequired = errors.New("remote: length required")
	// ErrRateLimited is returned when the server answered 429.
	ErrRateLimited = errors.New("remote: rate limited")
)

// StatusError reports an unexpected HTTP status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote: unexpected status %d %s", e.Code, http.StatusText(e.Code))
}

// Client talks to a file server. It is safe for concurrent use.
type Client struct {
	resty   *resty.Client
	baseURL string
	limiter *rate.Limiter
	breaker *resilience.Breaker
	mu      sync.RWMutex
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each request. Zero, the default, leaves timing to the
// caller's context so large transfers are not cut off.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.resty.SetTimeout(d) }
}

// WithRateLimit caps outgoing requests per second. Zero means unlimited.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.SetRateLimit(rps) }
}

// WithTransport replaces the HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.resty.SetTransport(rt) }
}

// WithTraceID sends a fixed X-Trace-ID so server logs can be correlated.
func WithTraceID(traceID string) Option {
	return func(c *Client) { c.resty.SetHeader(tracing.TraceHeader, traceID) }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	// Pooled transport tuned for long-lived connections
	pooled := retryablehttp.NewClient()
	pooled.Logger = nil

	baseURL = strings.TrimSuffix(baseURL, "/")
	restyClient := resty.New().
		SetBaseURL(baseURL).
		SetTransport(pooled.HTTPClient.Transport).
		SetHeader("User-Agent", "remotefs-client/1.0")

	c := &Client{
		resty:   restyClient,
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Inf, 0),
		breaker: resilience.New("remotefs", resilience.Settings{
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     10 * time.Second,
			ReadyToTrip: func(counts resilience.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: isAnswer,
		}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetRateLimit configures rate limiting (requests per second)
func (c *Client) SetRateLimit(rps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rps <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 0)
	} else {
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(1, int(rps)))
	}
}

// BreakerState returns the current circuit breaker state
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// request waits for the limiter and returns a request bound to ctx.
func (c *Client) request(ctx context.Context) (*resty.Request, error) {
	c.mu.RLock()
	limiter := c.limiter
	c.mu.RUnlock()

	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return c.resty.R().SetContext(ctx), nil
}

// execute sends a request through the breaker and maps the status.
func (c *Client) execute(ctx context.Context, send func(*resty.Request) (*resty.Response, error)) (*resty.Response, error) {
	req, err := c.request(ctx)
	if err != nil {
		return nil, err
	}
	return resilience.Execute(c.breaker, func() (*resty.Response, error) {
		resp, err := send(req)
		if err != nil {
			return nil, err
		}
		return resp, statusError(resp.StatusCode())
	})
}

// isAnswer treats any reply below 500 as a healthy server.
func isAnswer(err error) bool {
	var status *StatusError
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrTooLarge),
		errors.Is(err, ErrLengthRequired), errors.Is(err, ErrRateLimited):
		return true
	case errors.As(err, &status):
		return status.Code < 500
	default:
		return false
	}
}

func statusError(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusRequestEntityTooLarge:
		return ErrTooLarge
	case code == http.StatusLengthRequired:
		return ErrLengthRequired
	case code == http.StatusTooManyRequests:
		return ErrRateLimited
	default:
		return &StatusError{Code: code}
	}
}

// route builds "/files/<verb>/<escaped path>".
func route(verb, path string) string {
	return "/files/" + verb + "/" + EscapePath(path)
}

// EscapePath percent-encodes each '/'-separated segment of path. Leading,
// trailing and doubled slashes are dropped.
func EscapePath(path string) string {
	var segs []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			segs = append(segs, url.PathEscape(seg))
		}
	}
	return strings.Join(segs, "/")
}
