package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastBackoff(attempts int) Backoff {
	return Backoff{Attempts: attempts, Initial: time.Millisecond, Max: 2 * time.Millisecond}
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastBackoff(3), "test", func(context.Context) error {
		calls++
		if calls < 3 {
			return MarkTransient(errors.New("busy"))
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	calls := 0
	perm := errors.New("bad password")
	err := Retry(context.Background(), fastBackoff(5), "test", func(context.Context) error {
		calls++
		return perm
	})
	assert.ErrorIs(t, err, perm)
	assert.Equal(t, 1, calls)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fastBackoff(4), "test", func(context.Context) error {
		calls++
		return MarkTransient(errors.New("down"))
	})
	require.Error(t, err)
	assert.Equal(t, 4, calls)
}

func TestRetry_ZeroAttemptsMeansOneCall(t *testing.T) {
	calls := 0
	_ = Retry(context.Background(), Backoff{}, "test", func(context.Context) error {
		calls++
		return MarkTransient(errors.New("down"))
	})
	assert.Equal(t, 1, calls)
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	b := Backoff{Attempts: 10, Initial: time.Hour, Max: time.Hour}

	done := make(chan error, 1)
	go func() {
		done <- Retry(ctx, b, "test", func(context.Context) error {
			calls++
			return MarkTransient(errors.New("down"))
		})
	}()
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	case <-time.After(5 * time.Second):
		t.Fatal("retry did not stop on cancel")
	}
}

func TestRetry_CustomRetryable(t *testing.T) {
	calls := 0
	b := fastBackoff(3)
	b.Retryable = func(error) bool { return true }
	err := Retry(context.Background(), b, "test", func(context.Context) error {
		calls++
		return errors.New("anything")
	})
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryValue_ReturnsValue(t *testing.T) {
	calls := 0
	v, err := RetryValue(context.Background(), fastBackoff(3), "test", func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", MarkTransient(errors.New("busy"))
		}
		return "lead-1", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "lead-1", v)
}

func TestRetryValue_ZeroOnFailure(t *testing.T) {
	v, err := RetryValue(context.Background(), fastBackoff(2), "test", func(context.Context) (int, error) {
		return 42, errors.New("nope")
	})
	require.Error(t, err)
	assert.Zero(t, v)
}

func TestBackoff_Delay(t *testing.T) {
	b := Backoff{Attempts: 5, Initial: 100 * time.Millisecond, Max: 300 * time.Millisecond}
	assert.Equal(t, 100*time.Millisecond, b.Delay(0))
	assert.Equal(t, 200*time.Millisecond, b.Delay(1))
	assert.Equal(t, 300*time.Millisecond, b.Delay(2))
	assert.Equal(t, 300*time.Millisecond, b.Delay(10))
}

func TestBackoff_JitterBounds(t *testing.T) {
	b := Backoff{Attempts: 3, Initial: 100 * time.Millisecond, Max: time.Second, Jitter: 0.5}.normalized()
	for range 100 {
		d := b.jittered(0)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

func TestDefaultBackoff(t *testing.T) {
	b := DefaultBackoff()
	assert.Equal(t, 3, b.Attempts)
	assert.Equal(t, 250*time.Millisecond, b.Initial)
	assert.Nil(t, b.Retryable)
}
