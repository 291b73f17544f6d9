package common

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

// DefaultUserAgent is sent when a request does not set its own
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"

// maxResponseBytes caps how much of a response body is read into memory
const maxResponseBytes = 8 * 1024 * 1024

// StatusError is returned for non-2xx responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// HTTPClientConfig configures an HTTPClient
type HTTPClientConfig struct {
	Timeout        time.Duration
	RateLimit      float64 // requests per second
	RateBurst      int
	MaxTries       uint // 1 disables retries
	MaxElapsedTime time.Duration
	UserAgent      string
	Transport      http.RoundTripper
}

// DefaultHTTPClientConfig returns the configuration used for YouTube listing calls
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:        30 * time.Second,
		RateLimit:      5,
		RateBurst:      5,
		MaxTries:       3,
		MaxElapsedTime: 30 * time.Second,
		UserAgent:      DefaultUserAgent,
	}
}

// HTTPClient is a rate-limited HTTP client that retries transient failures
// (network errors, 429 and 5xx) with exponential backoff
type HTTPClient struct {
	config      HTTPClientConfig
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewHTTPClient creates a new HTTPClient
func NewHTTPClient(config HTTPClientConfig) *HTTPClient {
	defaults := DefaultHTTPClientConfig()
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.RateLimit <= 0 {
		config.RateLimit = defaults.RateLimit
	}
	if config.RateBurst <= 0 {
		config.RateBurst = defaults.RateBurst
	}
	if config.MaxTries == 0 {
		config.MaxTries = defaults.MaxTries
	}
	if config.MaxElapsedTime == 0 {
		config.MaxElapsedTime = defaults.MaxElapsedTime
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}

	return &HTTPClient{
		config: config,
		httpClient: &http.Client{
			Timeout:   config.Timeout,
			Transport: config.Transport,
		},
		rateLimiter: rate.NewLimiter(rate.Limit(config.RateLimit), config.RateBurst),
	}
}

// Get performs a GET request and returns the response body
func (c *HTTPClient) Get(ctx context.Context, url string, header http.Header) ([]byte, error) {
	return c.do(ctx, http.MethodGet, url, header, nil)
}

// Post performs a POST request with the given body and returns the response body
func (c *HTTPClient) Post(ctx context.Context, url string, header http.Header, body []byte) ([]byte, error) {
	return c.do(ctx, http.MethodPost, url, header, body)
}

func (c *HTTPClient) do(ctx context.Context, method, url string, header http.Header, body []byte) ([]byte, error) {
	operation := func() ([]byte, error) {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(fmt.Errorf("rate limiter: %w", err))
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", c.config.UserAgent)
		for k, values := range header {
			req.Header.Del(k)
			for _, v := range values {
				req.Header.Add(k, v)
			}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			statusErr := &StatusError{StatusCode: resp.StatusCode, Body: snippet(data)}
			if IsRetryableStatus(resp.StatusCode) {
				return nil, statusErr
			}
			return nil, backoff.Permanent(statusErr)
		}
		return data, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.MaxInterval = 5 * time.Second

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(c.config.MaxTries),
		backoff.WithMaxElapsedTime(c.config.MaxElapsedTime),
	)
}

// IsRetryableStatus reports whether an HTTP status is worth retrying
func IsRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func snippet(data []byte) string {
	const limit = 512
	if len(data) > limit {
		return string(data[:limit])
	}
	return string(data)
}
