// Package retry runs an operation under a bounded attempt budget with
// jittered exponential waits between attempts.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

type State struct {
	Attempt int
	Err     error
	Wait    time.Duration
}

type Policy struct {
	MaxAttempts int
	Multiplier  time.Duration
	MinWait     time.Duration
	MaxWait     time.Duration

	// Retryable decides which errors earn another attempt. Nil retries
	// everything. Nothing is retried once ctx is done.
	Retryable func(error) bool

	// BeforeRetry runs after a failed attempt, before sleeping. Errors and
	// panics from it are logged and ignored.
	BeforeRetry func(ctx context.Context, s State) error

	Sleep  func(ctx context.Context, d time.Duration) error
	Rand   func() float64
	Logger *slog.Logger
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		Multiplier:  2 * time.Second,
		MinWait:     4 * time.Second,
		MaxWait:     60 * time.Second,
	}
}

// Wait returns the pause after the given failed attempt (1-based): a uniform
// draw between MinWait and Multiplier*2^(attempt-1), the upper bound clamped
// to [MinWait, MaxWait].
func (p Policy) Wait(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	high := float64(p.Multiplier) * math.Pow(2, float64(attempt-1))
	if high > float64(p.MaxWait) {
		high = float64(p.MaxWait)
	}
	if high < float64(p.MinWait) {
		high = float64(p.MinWait)
	}
	r := rand.Float64
	if p.Rand != nil {
		r = p.Rand
	}
	low := float64(p.MinWait)
	return time.Duration(low + r()*(high-low))
}

func (p Policy) retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if p.Retryable == nil {
		return true
	}
	return p.Retryable(err)
}

// Do calls fn until it succeeds, returns a non-retryable error, or the attempt
// budget is spent. It returns the value, the number of attempts made and the
// last error exactly as fn returned it.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context, attempt int) (T, error)) (T, int, error) {
	var zero T
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		v, err := fn(ctx, attempt)
		if err == nil {
			return v, attempt, nil
		}
		lastErr = err

		if !p.retryable(ctx, err) || attempt == maxAttempts {
			return zero, attempt, err
		}

		wait := p.Wait(attempt)
		p.beforeRetry(ctx, logger, State{Attempt: attempt, Err: err, Wait: wait})

		if err := sleep(ctx, wait); err != nil {
			return zero, attempt, lastErr
		}
	}
	return zero, maxAttempts, lastErr
}

func (p Policy) beforeRetry(ctx context.Context, logger *slog.Logger, s State) {
	logger.Warn("retrying after failed attempt",
		"attempt", s.Attempt,
		"error_type", fmt.Sprintf("%T", s.Err),
		"error", s.Err,
		"wait", s.Wait,
	)
	if p.BeforeRetry == nil {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("before-retry hook panicked", "attempt", s.Attempt, "panic", r)
		}
	}()
	if err := p.BeforeRetry(ctx, s); err != nil {
		logger.Error("before-retry hook failed", "attempt", s.Attempt, "error", err)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
