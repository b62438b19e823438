// Package poll retries an observation of a remote system until it satisfies a condition.
//
// The case engine processes commands asynchronously, so the state returned by a query
// can lag behind the command that changed it. Assertions on that state go through Until,
// which keeps fetching until the predicate holds or the attempts are used up.
package poll

import (
	"context"
	"fmt"
	"time"
)

const (
	DefaultMaxAttempts = 50
	DefaultInterval    = time.Second
)

// Logger receives a line per attempt.
type Logger interface {
	Printf(message string, args ...interface{})
}

// Policy controls how often and how long Until retries.
type Policy struct {
	// MaxAttempts is the number of fetches before giving up. Zero means DefaultMaxAttempts.
	MaxAttempts int
	// Interval is the delay between attempts. Zero means DefaultInterval.
	Interval time.Duration
	// Description is used in log output and in the TimeoutError message.
	Description string
}

// DefaultPolicy returns a policy of 50 attempts, one second apart.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, Interval: DefaultInterval}
}

func (p Policy) withDefaults() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.Interval <= 0 {
		p.Interval = DefaultInterval
	}
	if p.Description == "" {
		p.Description = "condition"
	}
	return p
}

// TimeoutError is returned by Until when no attempt satisfied the predicate.
type TimeoutError struct {
	Description string
	Attempts    int
	// LastValue is the most recent successful observation; it is only meaningful if
	// Observed is true.
	LastValue interface{}
	Observed  bool
	// LastErr is the error from the most recent failed fetch, if any.
	LastErr error
}

func (e *TimeoutError) Error() string {
	var last string
	switch {
	case e.Observed:
		last = fmt.Sprintf("last observed %+v", e.LastValue)
	case e.LastErr != nil:
		last = fmt.Sprintf("not found: %s", e.LastErr)
	default:
		last = "not found"
	}
	return fmt.Sprintf("%s was not satisfied after %d attempts (%s)", e.Description, e.Attempts, last)
}

func (e *TimeoutError) Unwrap() error {
	return e.LastErr
}

// Until calls fetch until predicate returns true for its result, and returns that result.
//
// A fetch error counts as an unsuccessful attempt and does not stop the loop. After
// policy.MaxAttempts unsuccessful attempts it returns a *TimeoutError. If ctx is
// cancelled while waiting between attempts, the context error is returned; a fetch that
// is already running is not interrupted other than through the ctx it receives.
func Until[T any](
	ctx context.Context,
	fetch func(context.Context) (T, error),
	predicate func(T) bool,
	policy Policy,
	logger Logger,
) (T, error) {
	policy = policy.withDefaults()
	timeout := &TimeoutError{Description: policy.Description}

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		timeout.Attempts = attempt
		value, err := fetch(ctx)
		switch {
		case err != nil:
			timeout.LastErr = err
			logf(logger, "Attempt %d of %d for %s failed: %s", attempt, policy.MaxAttempts, policy.Description, err)
		case predicate(value):
			return value, nil
		default:
			timeout.LastValue, timeout.Observed, timeout.LastErr = value, true, nil
			logf(logger, "Attempt %d of %d for %s: not yet satisfied", attempt, policy.MaxAttempts, policy.Description)
		}

		if attempt == policy.MaxAttempts {
			break
		}
		timer := time.NewTimer(policy.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			var zero T
			return zero, fmt.Errorf("stopped waiting for %s: %w", policy.Description, ctx.Err())
		case <-timer.C:
		}
	}

	var zero T
	return zero, timeout
}

func logf(logger Logger, message string, args ...interface{}) {
	if logger != nil {
		logger.Printf(message, args...)
	}
}
