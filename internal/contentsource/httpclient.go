package contentsource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// HTTPClientConfig configures the HTTP client.
type HTTPClientConfig struct {
	// Timeout bounds a single attempt.
	Timeout time.Duration

	// RateLimit is the sustained requests per second towards the backend.
	RateLimit float64

	// BurstSize is the token bucket depth.
	BurstSize int

	// MaxRetries is the number of extra attempts after a 429, a 5xx or a
	// network error. Zero disables retries.
	MaxRetries int

	// RetryDelay is the first backoff step; later steps double it up to
	// MaxRetryDelay. A Retry-After header from the backend takes precedence.
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration

	UserAgent string

	// Username and Password, when both set, are sent as HTTP Basic credentials
	// on every request.
	Username string
	Password string
}

// HTTPClient issues rate-limited GETs against the content backend with
// optional retries. It is safe for concurrent use.
type HTTPClient struct {
	client      *http.Client
	rateLimiter *RateLimiter
	backoff     backoff
	config      HTTPClientConfig
}

// NewHTTPClient creates a client, filling unset options with defaults.
func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 10
	}
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 10
	}
	cfg.MaxRetries = max(cfg.MaxRetries, 0)
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.MaxRetryDelay < cfg.RetryDelay {
		cfg.MaxRetryDelay = 30 * cfg.RetryDelay
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "JournalLibrary/1.0"
	}

	return &HTTPClient{
		client:      &http.Client{Timeout: cfg.Timeout},
		rateLimiter: NewRateLimiter(cfg.RateLimit, cfg.BurstSize),
		backoff:     backoff{base: cfg.RetryDelay, ceiling: cfg.MaxRetryDelay},
		config:      cfg,
	}
}

// HasCredentials reports whether Basic credentials are configured.
func (c *HTTPClient) HasCredentials() bool {
	return c.config.Username != "" && c.config.Password != ""
}

// Do sends req, retrying retryable failures up to MaxRetries times. When
// retries run out on a retryable status, the last response is returned so
// the caller can classify it. Only body-less requests are retried safely.
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	if c.HasCredentials() {
		req.SetBasicAuth(c.config.Username, c.config.Password)
	}

	ctx := req.Context()
	for attempt := 0; ; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait: %w", err)
		}

		resp, err := c.client.Do(req)
		last := attempt == c.config.MaxRetries

		var delay time.Duration
		switch {
		case err != nil:
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || last {
				return nil, fmt.Errorf("request failed: %w", err)
			}
			delay = c.backoff.step(attempt)
		case !retryableStatus(resp.StatusCode) || last:
			return resp, nil
		default:
			delay = c.backoff.after(resp, attempt)
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
			resp.Body.Close()
		}

		if err := sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// retryableStatus reports whether a response status is worth another attempt.
func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || (code >= 500 && code < 600)
}

// backoff computes retry delays: base doubled per attempt, capped at ceiling.
type backoff struct {
	base    time.Duration
	ceiling time.Duration
}

func (b backoff) step(attempt int) time.Duration {
	d := b.base
	for i := 0; i < attempt && d < b.ceiling; i++ {
		d *= 2
	}
	return min(d, b.ceiling)
}

// after honours a positive Retry-After (seconds or HTTP date) on resp and
// falls back to the backoff step otherwise. The header is not capped.
func (b backoff) after(resp *http.Response, attempt int) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return b.step(attempt)
	}
	if seconds, err := strconv.Atoi(v); err == nil {
		if seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
		return b.step(attempt)
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return b.step(attempt)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
