// Package ratelimit paces outbound requests to model and sandbox backends.
package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// DefaultBackoff is used when a 429 response carries no Retry-After.
const DefaultBackoff = 30 * time.Second

// Config holds rate limiting configuration for one backend.
type Config struct {
	// RequestsPerSecond is the sustained rate. Zero or less disables pacing.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size. Defaults to 1.
	BurstSize int
}

// Limiter is a token bucket with an additional backoff window set by
// 429 responses. A nil *Limiter never blocks.
type Limiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	now     func() time.Time
}

// New creates a limiter. It returns nil when cfg disables pacing, which
// callers may use as-is.
func New(cfg Config) *Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return nil
	}
	if cfg.BurstSize < 1 {
		cfg.BurstSize = 1
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		now:     time.Now,
	}
}

// Wait blocks until a request may be made, honouring any backoff window.
func (l *Limiter) Wait(ctx context.Context) error {
	if l == nil {
		return ctx.Err()
	}

	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if wait := retryAt.Sub(l.now()); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return l.limiter.Wait(ctx)
}

// Observe inspects a response and opens a backoff window on 429.
func (l *Limiter) Observe(resp *http.Response) {
	if l == nil || resp == nil || resp.StatusCode != http.StatusTooManyRequests {
		return
	}
	l.RecordRateLimit(RetryAfter(resp.Header.Get("Retry-After")))
}

// RecordRateLimit opens a backoff window of d, or DefaultBackoff when d <= 0.
func (l *Limiter) RecordRateLimit(d time.Duration) {
	if l == nil {
		return
	}
	if d <= 0 {
		d = DefaultBackoff
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if until := l.now().Add(d); until.After(l.retryAt) {
		l.retryAt = until
	}
}

// RetryUntil returns the end of the current backoff window.
func (l *Limiter) RetryUntil() time.Time {
	if l == nil {
		return time.Time{}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.retryAt
}

// RetryAfter parses a Retry-After header given in seconds. Invalid or
// HTTP-date values return zero.
func RetryAfter(header string) time.Duration {
	secs, err := strconv.Atoi(header)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
