// Package scryfall provides a rate-limited client for the Scryfall API.
package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://api.scryfall.com"
	defaultUserAgent = "deck-analyzer/1.0"
	requestTimeout   = 30 * time.Second
	initialBackoff   = 1 * time.Second
	maxBackoff       = 16 * time.Second
)

// Config holds client configuration.
type Config struct {
	// BaseURL overrides the API endpoint. Used by tests.
	BaseURL string

	// UserAgent sent with every request. Scryfall requires one.
	UserAgent string

	// Timeout applies per HTTP request.
	Timeout time.Duration

	// MaxRetries bounds retry attempts for network errors and HTTP 429.
	MaxRetries int

	// Limiter throttles requests. Passed in explicitly so callers
	// sharing one client share one ceiling.
	Limiter *rate.Limiter
}

// DefaultConfig returns the default client configuration: 5 requests
// per second, 3 retries.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    defaultBaseURL,
		UserAgent:  defaultUserAgent,
		Timeout:    requestTimeout,
		MaxRetries: 3,
		Limiter:    rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
	}
}

// Client is a Scryfall API client with rate limiting and bounded
// retries.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
	userAgent   string
	maxRetries  int
}

// NewClient creates a client from cfg. A nil cfg uses DefaultConfig;
// zero-valued fields fall back to defaults individually.
func NewClient(cfg *Config) *Client {
	defaults := DefaultConfig()
	if cfg == nil {
		cfg = defaults
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.BaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaults.UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaults.MaxRetries
	}
	if cfg.Limiter == nil {
		cfg.Limiter = defaults.Limiter
	}

	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		rateLimiter: cfg.Limiter,
		baseURL:     cfg.BaseURL,
		userAgent:   cfg.UserAgent,
		maxRetries:  cfg.MaxRetries,
	}
}

// GetCardByName retrieves a card by its exact name using the named-card
// endpoint. A missing card returns *NotFoundError.
func (c *Client) GetCardByName(ctx context.Context, name string) (*Card, error) {
	reqURL := fmt.Sprintf("%s/cards/named?exact=%s", c.baseURL, url.QueryEscape(name))

	var card Card
	if err := c.doRequest(ctx, reqURL, &card); err != nil {
		return nil, fmt.Errorf("get card %q: %w", name, err)
	}

	return &card, nil
}

// doRequest performs a GET with rate limiting and retry logic,
// decoding the JSON response into result.
func (c *Client) doRequest(ctx context.Context, reqURL string, result interface{}) error {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)
			if attempt < c.maxRetries {
				if err := sleepCtx(ctx, backoff); err != nil {
					return err
				}
				backoff = minDuration(backoff*2, maxBackoff)
				continue
			}
			return lastErr
		}

		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusOK:
			if readErr != nil {
				return fmt.Errorf("read response body: %w", readErr)
			}
			if err := json.Unmarshal(body, result); err != nil {
				return fmt.Errorf("parse JSON response: %w", err)
			}
			return nil

		case http.StatusTooManyRequests:
			lastErr = fmt.Errorf("rate limited (HTTP 429)")
			if attempt < c.maxRetries {
				wait := backoff
				if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
					if d, err := time.ParseDuration(retryAfter + "s"); err == nil {
						wait = d
					}
				}
				if err := sleepCtx(ctx, wait); err != nil {
					return err
				}
				backoff = minDuration(backoff*2, maxBackoff)
				continue
			}
			return lastErr

		case http.StatusNotFound:
			return &NotFoundError{URL: reqURL}

		default:
			var apiErr APIError
			if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Details != "" {
				return &apiErr
			}
			return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// sleepCtx sleeps for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
