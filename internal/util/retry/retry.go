package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExhausted matches every *ExhaustedError.
var ErrExhausted = errors.New("retry budget exhausted")

// Config holds retry configuration.
type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	// RetryIf decides whether a non-fatal error is worth another attempt.
	// Nil retries every non-fatal error.
	RetryIf func(error) bool
}

// Option is a functional option for retry configuration.
type Option func(*Config)

func newConfig(opts []Option) *Config {
	cfg := &Config{
		MaxRetries:   5,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Attempts is the total number of calls the configuration allows.
func (c *Config) Attempts() int {
	return c.MaxRetries + 1
}

// WithExponentialBackoff executes the operation with exponential backoff retry.
// It retries the operation up to MaxRetries times, with exponentially increasing
// delays between attempts. Context cancellation is respected throughout.
//
// Errors wrapped with Fatal() are returned unwrapped without retrying, as are
// errors rejected by the RetryIf predicate. Running out of attempts yields an
// *ExhaustedError carrying the last error.
func WithExponentialBackoff(ctx context.Context, operation func() error, opts ...Option) error {
	return Poll(ctx, func(context.Context) (bool, error) {
		if err := operation(); err != nil {
			return false, err
		}
		return true, nil
	}, opts...)
}

// Poll calls check until it reports done, returns a fatal error, or the
// attempt budget runs out. A (false, nil) result counts as an attempt that is
// still in progress; non-fatal errors count as attempts too.
func Poll(ctx context.Context, check func(ctx context.Context) (bool, error), opts ...Option) error {
	cfg := newConfig(opts)

	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("context cancelled after %d attempts: %w", attempt, err)
		}

		done, err := check(ctx)
		if err == nil && done {
			return nil
		}

		lastErr = err
		if err != nil {
			var fatalErr *FatalError
			if errors.As(err, &fatalErr) {
				return fatalErr.Err
			}
			if cfg.RetryIf != nil && !cfg.RetryIf(err) {
				return err
			}
		}

		if attempt < cfg.MaxRetries {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return fmt.Errorf("context cancelled after %d attempts: %w", attempt+1, ctx.Err())
			case <-timer.C:
				delay = time.Duration(float64(delay) * cfg.Multiplier)
				if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
					delay = cfg.MaxDelay
				}
			}
		}
	}

	return &ExhaustedError{Attempts: cfg.Attempts(), Err: lastErr}
}

// WithMaxRetries sets the maximum number of retries.
func WithMaxRetries(n int) Option {
	return func(c *Config) {
		c.MaxRetries = n
	}
}

// WithMaxAttempts sets the total number of calls, first one included.
func WithMaxAttempts(n int) Option {
	return func(c *Config) {
		if n < 1 {
			n = 1
		}
		c.MaxRetries = n - 1
	}
}

// WithInitialDelay sets the initial delay between retries.
func WithInitialDelay(d time.Duration) Option {
	return func(c *Config) {
		c.InitialDelay = d
	}
}

// WithMaxDelay sets the maximum delay between retries.
func WithMaxDelay(d time.Duration) Option {
	return func(c *Config) {
		c.MaxDelay = d
	}
}

// WithMultiplier sets the backoff multiplier.
func WithMultiplier(m float64) Option {
	return func(c *Config) {
		c.Multiplier = m
	}
}

// WithFixedInterval waits d between every attempt.
func WithFixedInterval(d time.Duration) Option {
	return func(c *Config) {
		c.InitialDelay = d
		c.MaxDelay = d
		c.Multiplier = 1
	}
}

// WithRetryIf only retries errors for which fn returns true.
func WithRetryIf(fn func(error) bool) Option {
	return func(c *Config) {
		c.RetryIf = fn
	}
}

// ExhaustedError reports that every attempt was used. Err is the last error
// seen and is nil when the final attempts merely reported "not done".
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("operation did not complete after %d attempts", e.Attempts)
	}
	return fmt.Sprintf("operation failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

func (e *ExhaustedError) Is(target error) bool {
	return target == ErrExhausted
}

// FatalError wraps an error to mark it as fatal (non-retryable).
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatal marks an error as fatal (non-retryable).
// Operations that encounter fatal errors will not be retried.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// IsFatal checks if an error is fatal (non-retryable).
func IsFatal(err error) bool {
	var fatalErr *FatalError
	return errors.As(err, &fatalErr)
}
