package adwords

import (
	"context"
	"errors"
	"math"
	mrand "math/rand"
	"net/http"
	"time"
)

// retryPolicy decides whether a failed service call is attempted again and
// how long to wait first.
type retryPolicy struct {
	maxAttempts int
	initial     time.Duration
	max         time.Duration
	multiplier  float64
	jitter      float64
}

// newRetryPolicy reads the retry settings from cfg. A non-retryable call
// gets exactly one attempt regardless of MaxRetries.
func newRetryPolicy(cfg Config, retryable bool) retryPolicy {
	p := retryPolicy{
		maxAttempts: 1,
		initial:     cfg.RetryInitialInterval,
		max:         cfg.RetryMaxInterval,
		multiplier:  cfg.RetryMultiplier,
		jitter:      cfg.RetryJitter,
	}
	if retryable && cfg.MaxRetries > 0 {
		p.maxAttempts = cfg.MaxRetries + 1
	}
	return p
}

// retry reports whether another attempt follows the one numbered attempt.
// Service faults and authorization failures are final: the service answers
// them identically every time.
func (p retryPolicy) retry(attempt int, resp *http.Response, err error) bool {
	if attempt+1 >= p.maxAttempts {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	var authErr *AuthorizationError
	if errors.As(err, &apiErr) || errors.As(err, &authErr) {
		return false
	}
	if resp == nil {
		return true
	}
	return retryableStatus(resp.StatusCode)
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// backoff is initial*multiplier^attempt, capped at max, with symmetric jitter.
func (p retryPolicy) backoff(attempt int) time.Duration {
	delay := time.Duration(float64(p.initial) * math.Pow(p.multiplier, float64(attempt)))
	if p.max > 0 && delay > p.max {
		delay = p.max
	}
	if p.jitter > 0 {
		delay = time.Duration(float64(delay) * (1 + (mrand.Float64()*2-1)*p.jitter))
	}
	return max(delay, time.Millisecond)
}

// delay is the backoff for attempt, stretched to the server's Retry-After
// when that is longer.
func (p retryPolicy) delay(attempt int, resp *http.Response) time.Duration {
	delay := p.backoff(attempt)
	if resp == nil {
		return delay
	}
	if after := parseRetryAfter(resp.Header); after != nil && *after > delay {
		return *after
	}
	return delay
}

func sleepWithContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
