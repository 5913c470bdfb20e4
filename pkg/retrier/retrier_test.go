package retrier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransient = errors.New("listing is being rewritten")

func TestRetrier_Do(t *testing.T) {
	t.Run("success on first attempt", func(t *testing.T) {
		attempts := 0
		err := New().Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, attempts)
	})

	t.Run("success after retries", func(t *testing.T) {
		var retried []int
		r := New(
			WithMaxRetries(3),
			WithInitialInterval(time.Millisecond),
			WithOnRetry(func(attempt int, err error) {
				retried = append(retried, attempt)
				assert.ErrorIs(t, err, errTransient)
			}),
		)

		attempts := 0
		err := r.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			if attempts < 3 {
				return errTransient
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, attempts)
		assert.Equal(t, []int{1, 2}, retried)
	})

	t.Run("fail after max retries", func(t *testing.T) {
		r := New(WithMaxRetries(2), WithInitialInterval(time.Millisecond), WithJitter(0))
		attempts := 0
		err := r.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return errTransient
		})
		assert.ErrorIs(t, err, errTransient)
		assert.Equal(t, 3, attempts) // 1 initial + 2 retries
	})

	t.Run("permanent error is not retried", func(t *testing.T) {
		permanent := errors.New("no such file")
		r := New(
			WithInitialInterval(time.Millisecond),
			WithRetryIf(func(err error) bool { return !errors.Is(err, permanent) }),
		)

		attempts := 0
		err := r.Do(context.Background(), func(ctx context.Context) error {
			attempts++
			return permanent
		})
		assert.ErrorIs(t, err, permanent)
		assert.Equal(t, 1, attempts)
	})

	t.Run("context cancellation", func(t *testing.T) {
		r := New(WithMaxRetries(5), WithInitialInterval(100*time.Millisecond))
		ctx, cancel := context.WithCancel(context.Background())

		attempts := 0
		err := r.Do(ctx, func(ctx context.Context) error {
			attempts++
			if attempts == 2 {
				cancel()
			}
			return errTransient
		})
		assert.Error(t, err)
		assert.Equal(t, 2, attempts)
	})

	t.Run("interval is capped", func(t *testing.T) {
		r := New(
			WithMaxRetries(4),
			WithInitialInterval(time.Millisecond),
			WithMaxInterval(2*time.Millisecond),
			WithMultiplier(10),
			WithJitter(0),
		)

		start := time.Now()
		_ = r.Do(context.Background(), func(ctx context.Context) error { return errTransient })
		assert.Less(t, time.Since(start), time.Second)
	})
}

func TestDoWithData(t *testing.T) {
	r := New(WithInitialInterval(time.Millisecond))

	attempts := 0
	got, err := DoWithData(r, context.Background(), func(ctx context.Context) (int, error) {
		attempts++
		if attempts == 1 {
			return 0, errTransient
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}
