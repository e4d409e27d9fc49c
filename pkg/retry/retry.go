// Package retry implements bounded exponential backoff with jitter.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// Config defines retry behavior.
type Config struct {
	// MaxAttempts is the total number of attempts including the first.
	// Zero means retry until the context is done.
	MaxAttempts int
	// InitialDelay is the delay before the second attempt.
	InitialDelay time.Duration
	// MaxDelay caps exponential growth.
	MaxDelay time.Duration
	// Multiplier is the exponential backoff factor.
	Multiplier float64
	// Jitter randomizes each delay uniformly in [delay/2, delay].
	Jitter bool
	// OnRetry, when set, is called before each retry with the attempt
	// number, the error that caused it and the upcoming delay.
	OnRetry func(attempt int, err error, nextDelay time.Duration)
}

// DefaultConfig returns a conservative three-attempt configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// Permanent wraps an error so Do stops retrying immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

type permanentError struct{ err error }

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Do runs fn until it succeeds, returns a permanent error, exhausts
// MaxAttempts, or the context is done. The last error is returned.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = 100 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 30 * time.Second
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = 2.0
	}

	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return fmt.Errorf("%w (last attempt: %w)", err, lastErr)
			}
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		var perm *permanentError
		if errors.As(lastErr, &perm) {
			return perm.err
		}

		if cfg.MaxAttempts > 0 && attempt >= cfg.MaxAttempts {
			return fmt.Errorf("after %d attempts: %w", attempt, lastErr)
		}

		next := delay
		if cfg.Jitter {
			next = delay/2 + time.Duration(rand.Int63n(int64(delay/2)+1))
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, lastErr, next)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w (last attempt: %w)", ctx.Err(), lastErr)
		case <-time.After(next):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
}
