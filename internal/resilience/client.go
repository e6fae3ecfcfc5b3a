// Package resilience wraps outbound calls to the inference server with
// retry, circuit breaking, and concurrency throttling. Every
// network-bound adapter shares one Client so the breaker and the gate
// observe all traffic.
package resilience

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/docchat-cli/internal/core/domain"
	"github.com/custodia-labs/docchat-cli/internal/logger"
)

// Default configuration values.
const (
	DefaultMaxRetries    = 3
	DefaultBaseDelay     = 500 * time.Millisecond
	DefaultMaxDelay      = 10 * time.Second
	DefaultMaxConcurrent = 3
	DefaultTimeout       = 30 * time.Second
)

// Config holds configuration for the resilient client.
type Config struct {
	// MaxRetries is the total number of attempts per call.
	MaxRetries int

	// BaseDelay seeds the exponential backoff: delay = base × 2^(n-1).
	BaseDelay time.Duration

	// MaxDelay caps the backoff interval.
	MaxDelay time.Duration

	// BreakerThreshold is the consecutive-failure count that opens the
	// circuit.
	BreakerThreshold int

	// BreakerCooldown is how long the circuit stays open.
	BreakerCooldown time.Duration

	// MaxConcurrent bounds in-flight requests across all callers.
	MaxConcurrent int

	// Timeout bounds each individual network call.
	Timeout time.Duration

	// RequestsPerSecond rate-limits attempts. Zero disables limiting.
	RequestsPerSecond float64
}

// Client is a resilient HTTP client for the inference server.
type Client struct {
	http    *http.Client
	breaker *CircuitBreaker
	gate    *semaphore.Weighted
	limiter *rate.Limiter

	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// New creates a resilient client with pooled connections.
func New(cfg Config) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = DefaultBaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultMaxDelay
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultMaxConcurrent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	transport := &http.Transport{
		MaxIdleConns:        cfg.MaxConcurrent * 2,
		MaxIdleConnsPerHost: cfg.MaxConcurrent,
		IdleConnTimeout:     90 * time.Second,
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		http: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		breaker:    NewCircuitBreaker(cfg.BreakerThreshold, cfg.BreakerCooldown),
		gate:       semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		limiter:    limiter,
		maxRetries: cfg.MaxRetries,
		baseDelay:  cfg.BaseDelay,
		maxDelay:   cfg.MaxDelay,
	}
}

// Breaker exposes the circuit breaker, primarily for tests and status
// reporting.
func (c *Client) Breaker() *CircuitBreaker {
	return c.breaker
}

// Do executes a call against the inference server. The build function
// must return a fresh request on every invocation so the body can be
// replayed across attempts.
//
// Transient failures (5xx, 429, timeouts, connection errors) are
// retried with exponential backoff and counted by the circuit breaker;
// exhausted retries and an open breaker surface as *domain.OpError.
// Any other response is returned to the caller unretried.
func (c *Client) Do(ctx context.Context, op string, build func() (*http.Request, error)) (*http.Response, error) {
	if err := c.gate.Acquire(ctx, 1); err != nil {
		return nil, &domain.OpError{Op: op, Err: fmt.Errorf("acquire slot: %w", err)}
	}
	defer c.gate.Release(1)

	var lastErr error
	delay := c.baseDelay

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := c.breaker.Allow(); err != nil {
			return nil, &domain.OpError{Op: op, Err: err}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, &domain.OpError{Op: op, Err: fmt.Errorf("rate limit wait: %w", err)}
			}
		}

		req, err := build()
		if err != nil {
			return nil, &domain.OpError{Op: op, Err: fmt.Errorf("build request: %w", err)}
		}

		resp, err := c.http.Do(req)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, &domain.OpError{Op: op, Err: ctx.Err()}
			}
			// Timeouts and connection failures are transient.
			lastErr = err
			c.breaker.Failure()

		case transientStatus(resp.StatusCode):
			lastErr = fmt.Errorf("server returned status %d", resp.StatusCode)
			c.breaker.Failure()
			drain(resp)

		default:
			c.breaker.Success()
			return resp, nil
		}

		if attempt == c.maxRetries {
			break
		}

		logger.Debug("%s attempt %d failed, retrying in %s: %v", op, attempt, delay, lastErr)
		select {
		case <-ctx.Done():
			return nil, &domain.OpError{Op: op, Err: ctx.Err()}
		case <-time.After(delay):
			delay = min(delay*2, c.maxDelay)
		}
	}

	return nil, &domain.OpError{
		Op:  op,
		Err: fmt.Errorf("after %d attempts: %w", c.maxRetries, lastErr),
	}
}

// transientStatus reports whether the status code warrants a retry.
func transientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// drain discards and closes a response body so the pooled connection
// can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	_ = resp.Body.Close()
}
