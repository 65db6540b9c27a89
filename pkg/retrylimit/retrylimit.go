// Package retrylimit paces calls to an external API with an adaptive rate
// limiter and bounded retries. The limit climbs while calls succeed and is cut
// back when the API signals overload (HTTP 429/5xx).
//
//	lim := retrylimit.NewAdaptiveLimiter(5, 1, 20, 1, 0.5)
//	err := retrylimit.WithRetryMax(ctx, send, lim, 3)
package retrylimit

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AdaptiveLimiter wraps a rate.Limiter whose limit moves with request
// outcomes: up by stepUp on success, multiplied by stepDown on failure.
// Safe for concurrent use.
type AdaptiveLimiter struct {
	mu        sync.Mutex
	limiter   *rate.Limiter
	minLimit  rate.Limit
	maxLimit  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	lastError time.Time
}

// NewAdaptiveLimiter creates a limiter starting at initial requests per second,
// bounded by [min, max].
func NewAdaptiveLimiter(initial, min, max rate.Limit, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	if initial < 1 {
		initial = 1
	}
	if min < 1 {
		min = 1
	}
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, maxInt(1, int(initial))),
		minLimit: min,
		maxLimit: max,
		stepUp:   stepUp,
		stepDown: stepDown,
	}
}

// Wait blocks until a token is available or ctx is cancelled.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// Success raises the limit, unless a failure happened in the last few seconds.
func (a *AdaptiveLimiter) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastError) > 10*time.Second {
		a.adjust(a.limiter.Limit() + a.stepUp)
	}
}

// RateLimited cuts the limit after an overload signal.
func (a *AdaptiveLimiter) RateLimited() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = time.Now()
	a.adjust(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// CurrentLimit returns the current requests per second.
func (a *AdaptiveLimiter) CurrentLimit() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return float64(a.limiter.Limit())
}

func (a *AdaptiveLimiter) adjust(l rate.Limit) {
	if l > a.maxLimit {
		l = a.maxLimit
	} else if l < a.minLimit {
		l = a.minLimit
	}
	if l != a.limiter.Limit() {
		a.limiter.SetLimit(l)
		a.limiter.SetBurst(maxInt(1, int(l)))
	}
}

// HTTPError is implemented by errors carrying an HTTP status code. Errors
// without it are retried with plain backoff.
type HTTPError interface {
	error
	StatusCode() int
}

// Fatal wraps an error that must not be retried (e.g. missing permission).
type Fatal struct{ Err error }

func (f *Fatal) Error() string { return f.Err.Error() }
func (f *Fatal) Unwrap() error { return f.Err }

// WithRetryMax runs fn up to maxAttempts times with exponential backoff and
// jitter, waiting on lim (if non-nil) before each attempt. It stops early on
// success, a Fatal error, or ctx cancellation. 429 responses trim the limiter
// and retry after a short fixed delay.
func WithRetryMax(ctx context.Context, fn func() error, lim *AdaptiveLimiter, maxAttempts int) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	const (
		initialDelay   = 500 * time.Millisecond
		maxDelay       = 10 * time.Second
		rateLimitDelay = 100 * time.Millisecond
	)

	delay := initialDelay
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lim != nil {
			if err := lim.Wait(ctx); err != nil {
				return err
			}
		}

		err := fn()
		if err == nil {
			if lim != nil {
				lim.Success()
			}
			return nil
		}
		lastErr = err

		var fatal *Fatal
		if errors.As(err, &fatal) {
			return fatal.Err
		}

		wait := delay
		if isRateLimit(err) {
			if lim != nil {
				lim.RateLimited()
			}
			wait = rateLimitDelay
		} else {
			if isServerError(err) && lim != nil {
				lim.RateLimited()
			}
			delay = time.Duration(float64(delay) * 2)
			if delay > maxDelay {
				delay = maxDelay
			}
			wait = addJitter(wait)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return lastErr
}

// addJitter spreads retries by up to 25% of the delay.
func addJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	return d + time.Duration(rand.Int63n(int64(d/4)+1))
}

func isRateLimit(err error) bool {
	var he HTTPError
	return errors.As(err, &he) && he.StatusCode() == http.StatusTooManyRequests
}

func isServerError(err error) bool {
	var he HTTPError
	if !errors.As(err, &he) {
		return false
	}
	code := he.StatusCode()
	return code >= 500 && code < 600
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
