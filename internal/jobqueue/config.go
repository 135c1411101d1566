package jobqueue

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned by New when the queue cannot be constructed.
var ErrInvalidConfig = errors.New("invalid queue config")

// Config holds the admission policy for a Queue.
type Config struct {
	// Concurrency is the maximum number of jobs running at once.
	// Zero means the default of 1.
	Concurrency int

	// IntervalCap is the maximum number of job starts per Interval.
	// Zero disables rate limiting.
	IntervalCap int

	// Interval is the rate limiting window. Required when IntervalCap is set.
	Interval time.Duration

	// Timeout is the wall-clock budget of a single job. Zero means no limit.
	Timeout time.Duration

	// ThrowOnTimeout makes a timed out job a failure. When false, a timed out
	// job resolves successfully with the zero value.
	ThrowOnTimeout bool
}

// DefaultConfig returns a Config that serializes jobs and treats timeouts as
// failures.
func DefaultConfig() Config {
	return Config{
		Concurrency:    1,
		ThrowOnTimeout: true,
	}
}

func (c Config) validate() error {
	if c.Concurrency < 0 {
		return fmt.Errorf("%w: concurrency must not be negative, got %d", ErrInvalidConfig, c.Concurrency)
	}
	if c.IntervalCap < 0 {
		return fmt.Errorf("%w: interval cap must not be negative, got %d", ErrInvalidConfig, c.IntervalCap)
	}
	if c.Interval < 0 {
		return fmt.Errorf("%w: interval must not be negative, got %s", ErrInvalidConfig, c.Interval)
	}
	if c.IntervalCap > 0 && c.Interval == 0 {
		return fmt.Errorf("%w: interval is required when interval cap is set", ErrInvalidConfig)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative, got %s", ErrInvalidConfig, c.Timeout)
	}
	return nil
}
