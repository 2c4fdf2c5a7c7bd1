package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/time/rate"
)

const userAgent = "tour-stats/1.0"

// Config tunes a catalog client. Zero values pick the defaults.
type Config struct {
	BaseURL string

	// RequestInterval is the minimum spacing between requests.
	RequestInterval time.Duration
	Timeout         time.Duration

	Attempts   uint
	RetryDelay time.Duration

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// client is the single path every catalog request takes: it waits for the
// rate limiter, retries temporary failures and decodes JSON bodies.
type client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	attempts   uint
	retryDelay time.Duration
	logger     *slog.Logger
}

func newClient(defaultBaseURL string, config Config) *client {
	c := &client{
		baseURL:    config.BaseURL,
		httpClient: config.HTTPClient,
		attempts:   config.Attempts,
		retryDelay: config.RetryDelay,
		logger:     config.Logger,
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.httpClient == nil {
		timeout := config.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}
	if c.attempts == 0 {
		c.attempts = 3
	}
	if c.retryDelay == 0 {
		c.retryDelay = time.Second
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	interval := config.RequestInterval
	if interval <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, 1)
	} else {
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return c
}

// getJSON fetches baseURL+path and decodes the body into out. A 404 becomes
// ErrNotFound; anything else that fails is a *TransportError.
func (c *client) getJSON(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	err := retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
			return c.fetch(ctx, endpoint, target, out)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTemporary),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("catalog request failed, retrying",
				"endpoint", endpoint, "attempt", n+1, "attempts", c.attempts, "error", err)
		}),
	)
	return err
}

func (c *client) fetch(ctx context.Context, endpoint, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("%s: building request: %w", endpoint, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Endpoint: endpoint, Err: err}
	}
	defer func() {
		// Drain so the connection can be reused.
		if _, err := io.Copy(io.Discard, resp.Body); err != nil {
			c.logger.Debug("draining response body", "endpoint", endpoint, "error", err)
		}
		resp.Body.Close()
	}()

	c.logger.Debug("catalog request", "endpoint", endpoint, "status", resp.StatusCode, "duration", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", endpoint, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return &TransportError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %q", resp.Status)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Endpoint: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
