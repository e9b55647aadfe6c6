// Package retry retries dependency dial-ups at process start (Redis, Kafka).
// Request paths towards the booking backend are never retried.
package retry

import (
	"context"
	"errors"
	"math"
	"time"
)

var ErrMaxRetriesExceeded = errors.New("max retries exceeded")

// Config contains retry configuration
type Config struct {
	// MaxRetries is the number of extra attempts after the first one
	MaxRetries int
	// InitialInterval is the wait before the first retry
	InitialInterval time.Duration
	// MaxInterval caps the backoff
	MaxInterval time.Duration
	// Multiplier grows the interval after each retry
	Multiplier float64
}

// DefaultConfig returns 3 retries with 1s, 2s, 4s waits
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:      3,
		InitialInterval: time.Second,
		MaxInterval:     10 * time.Second,
		Multiplier:      2.0,
	}
}

// Operation is a single connection attempt
type Operation func(ctx context.Context) error

// OnRetry is called before waiting for the next attempt
type OnRetry func(attempt int, err error, wait time.Duration)

// PermanentError stops the retry loop immediately
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }

func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks err as not worth retrying
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

func normalize(cfg *Config) *Config {
	if cfg == nil {
		return DefaultConfig()
	}
	c := *cfg
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.InitialInterval <= 0 {
		c.InitialInterval = time.Second
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = 10 * time.Second
	}
	if c.Multiplier <= 0 {
		c.Multiplier = 2.0
	}
	return &c
}

// Interval returns the wait before retry number attempt (0-based)
func (c *Config) Interval(attempt int) time.Duration {
	c = normalize(c)
	wait := float64(c.InitialInterval) * math.Pow(c.Multiplier, float64(attempt))
	if wait > float64(c.MaxInterval) {
		wait = float64(c.MaxInterval)
	}
	return time.Duration(wait)
}

// Do runs op until it succeeds, returns a permanent error, the context ends
// or MaxRetries is exhausted. The last error is wrapped into the result.
func Do(ctx context.Context, cfg *Config, op Operation, onRetry OnRetry) error {
	cfg = normalize(cfg)

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return errors.Join(err, lastErr)
			}
			return err
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}

		var perm *PermanentError
		if errors.As(lastErr, &perm) {
			return perm.Err
		}

		if attempt == cfg.MaxRetries {
			break
		}

		wait := cfg.Interval(attempt)
		if onRetry != nil {
			onRetry(attempt+1, lastErr, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(ctx.Err(), lastErr)
		case <-timer.C:
		}
	}

	return errors.Join(ErrMaxRetriesExceeded, lastErr)
}
