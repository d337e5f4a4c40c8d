// Package resilience wraps collaborator calls with retries, exponential backoff
// and a per-attempt timeout.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// Policy controls retry behavior.
type Policy struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Multiplier     float64
	Timeout        time.Duration // per attempt; zero means no timeout
	Retryable      func(error) bool
	Logger         *zap.Logger
	Name           string
}

// DefaultPolicy is suitable for LLM extraction calls.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:     2,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		Multiplier:     2.0,
		Timeout:        30 * time.Second,
	}
}

// TimeoutError reports that an attempt ran past the policy timeout.
type TimeoutError struct {
	Name    string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Name, e.Timeout)
}

// ExhaustedError wraps the last error after all attempts failed.
type ExhaustedError struct {
	Name     string
	Attempts int
	Cause    error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Name, e.Attempts, e.Cause)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Cause
}

// Wrap returns op decorated with the policy. The returned function is safe for
// concurrent use and holds no state between calls.
func Wrap[T any](op func(ctx context.Context) (T, error), p Policy) func(ctx context.Context) (T, error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	name := p.Name
	if name == "" {
		name = "operation"
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = DefaultRetryable
	}

	return func(ctx context.Context) (T, error) {
		var zero T
		var lastErr error
		attempts := 0

		for attempt := 0; attempt <= p.MaxRetries; attempt++ {
			if err := ctx.Err(); err != nil {
				return zero, err
			}
			attempts++

			result, err := attemptOnce(ctx, op, p.Timeout, name)
			if err == nil {
				return result, nil
			}
			lastErr = err

			if ctx.Err() != nil || !retryable(err) {
				return zero, err
			}

			if attempt < p.MaxRetries {
				wait := Backoff(p, attempt)
				logger.Debug("retrying",
					zap.String("operation", name),
					zap.Int("attempt", attempt+1),
					zap.Duration("wait", wait),
					zap.Error(err))
				select {
				case <-time.After(wait):
				case <-ctx.Done():
					return zero, ctx.Err()
				}
			}
		}
		return zero, &ExhaustedError{Name: name, Attempts: attempts, Cause: lastErr}
	}
}

func attemptOnce[T any](ctx context.Context, op func(ctx context.Context) (T, error), timeout time.Duration, name string) (T, error) {
	if timeout <= 0 {
		return op(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := op(attemptCtx)
	if err != nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		var zero T
		return zero, &TimeoutError{Name: name, Timeout: timeout}
	}
	return result, err
}

// Backoff returns the wait before retry number attempt+1.
func Backoff(p Policy, attempt int) time.Duration {
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	wait := time.Duration(float64(p.InitialBackoff) * math.Pow(mult, float64(attempt)))
	if p.MaxBackoff > 0 && wait > p.MaxBackoff {
		wait = p.MaxBackoff
	}
	return wait
}

// NonRetryable marks an error that should not be retried.
type NonRetryable struct {
	Err error
}

func (e *NonRetryable) Error() string {
	return e.Err.Error()
}

func (e *NonRetryable) Unwrap() error {
	return e.Err
}

// Permanent wraps err so that DefaultRetryable rejects it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &NonRetryable{Err: err}
}

// DefaultRetryable retries everything except cancellation and permanent errors.
func DefaultRetryable(err error) bool {
	var nr *NonRetryable
	if errors.As(err, &nr) {
		return false
	}
	return !errors.Is(err, context.Canceled)
}
