package poll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastPolicy = Policy{Interval: time.Millisecond}

func countingFetch(values ...int) (func(context.Context) (int, error), *int) {
	calls := 0
	return func(context.Context) (int, error) {
		v := values[calls]
		calls++
		return v, nil
	}, &calls
}

func TestUntilSatisfiedOnFourthAttempt(t *testing.T) {
	fetch, calls := countingFetch(1, 2, 3, 4, 5)
	policy := fastPolicy
	policy.MaxAttempts = 5

	value, err := Until(context.Background(), fetch, func(v int) bool { return v == 4 }, policy, nil)

	require.NoError(t, err)
	assert.Equal(t, 4, value)
	assert.Equal(t, 4, *calls)
}

func TestUntilTimesOut(t *testing.T) {
	fetch, calls := countingFetch(1, 2, 3)
	policy := fastPolicy
	policy.MaxAttempts = 3
	policy.Description = "value above 10"

	_, err := Until(context.Background(), fetch, func(v int) bool { return v > 10 }, policy, nil)

	var timeout *TimeoutError
	require.True(t, errors.As(err, &timeout))
	assert.Equal(t, 3, *calls)
	assert.Equal(t, 3, timeout.Attempts)
	assert.True(t, timeout.Observed)
	assert.Equal(t, 3, timeout.LastValue)
	assert.Contains(t, err.Error(), "value above 10 was not satisfied after 3 attempts")
}

func TestUntilTreatsFetchErrorsAsFailedAttempts(t *testing.T) {
	notYet := errors.New("case not found")
	calls := 0
	fetch := func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", notYet
		}
		return "Active", nil
	}
	policy := fastPolicy
	policy.MaxAttempts = 5

	value, err := Until(context.Background(), fetch, func(s string) bool { return s == "Active" }, policy, nil)

	require.NoError(t, err)
	assert.Equal(t, "Active", value)
	assert.Equal(t, 3, calls)
}

func TestUntilTimeoutWithOnlyErrorsReportsNotFound(t *testing.T) {
	notYet := errors.New("case not found")
	fetch := func(context.Context) (string, error) { return "", notYet }
	policy := fastPolicy
	policy.MaxAttempts = 2

	_, err := Until(context.Background(), fetch, func(string) bool { return true }, policy, nil)

	var timeout *TimeoutError
	require.True(t, errors.As(err, &timeout))
	assert.False(t, timeout.Observed)
	assert.True(t, errors.Is(err, notYet))
	assert.Contains(t, err.Error(), "not found")
}

func TestUntilStopsWhenContextIsCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	fetch := func(context.Context) (int, error) {
		calls++
		cancel()
		return 0, nil
	}

	_, err := Until(ctx, fetch, func(int) bool { return false }, Policy{MaxAttempts: 10, Interval: time.Hour}, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, calls)
}

func TestUntilDoesNotWaitAfterLastAttempt(t *testing.T) {
	fetch := func(context.Context) (int, error) { return 0, nil }
	start := time.Now()

	_, err := Until(context.Background(), fetch, func(int) bool { return false },
		Policy{MaxAttempts: 1, Interval: time.Hour}, nil)

	assert.Error(t, err)
	assert.Less(t, int64(time.Since(start)), int64(time.Minute))
}

type countingLogger struct{ lines int }

func (c *countingLogger) Printf(string, ...interface{}) { c.lines++ }

func TestUntilLogsEachUnsuccessfulAttempt(t *testing.T) {
	fetch, _ := countingFetch(1, 2, 3)
	logger := &countingLogger{}
	policy := fastPolicy
	policy.MaxAttempts = 3

	_, _ = Until(context.Background(), fetch, func(v int) bool { return v == 3 }, policy, logger)

	assert.Equal(t, 2, logger.lines)
}

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 50, p.MaxAttempts)
	assert.Equal(t, time.Second, p.Interval)

	zero := Policy{}.withDefaults()
	assert.Equal(t, p.MaxAttempts, zero.MaxAttempts)
	assert.Equal(t, p.Interval, zero.Interval)
}
