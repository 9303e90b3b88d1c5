package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func noBackoff() Policy {
	return Policy{MaxAttempts: MaxAttempts}
}

func scripted(results ...bool) (Attempt, *int) {
	calls := 0
	return func(ctx context.Context, n int) (bool, error) {
		calls++
		if n-1 < len(results) {
			return results[n-1], nil
		}
		return false, nil
	}, &calls
}

func TestDo_SucceedsOnFirstAttempt(t *testing.T) {
	attempt, calls := scripted(true)
	require.NoError(t, Do(context.Background(), noBackoff(), attempt))
	require.Equal(t, 1, *calls)
}

func TestDo_FailFailSucceed(t *testing.T) {
	attempt, calls := scripted(false, false, true)
	require.NoError(t, Do(context.Background(), noBackoff(), attempt))
	require.Equal(t, 3, *calls)
}

func TestDo_ExhaustsAfterMaxAttempts(t *testing.T) {
	attempt, calls := scripted()
	err := Do(context.Background(), noBackoff(), attempt)
	require.ErrorIs(t, err, ErrExhausted)
	require.Equal(t, MaxAttempts, *calls)
}

func TestDo_SucceedsOnLastAttempt(t *testing.T) {
	attempt, calls := scripted(false, false, false, false, true)
	require.NoError(t, Do(context.Background(), noBackoff(), attempt))
	require.Equal(t, 5, *calls)
}

func TestDo_ErrorStopsImmediately(t *testing.T) {
	boom := errors.New("connection refused")
	calls := 0
	err := Do(context.Background(), noBackoff(), func(ctx context.Context, n int) (bool, error) {
		calls++
		return false, boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, calls)
}

func TestDo_ZeroPolicyUsesDefaultBound(t *testing.T) {
	attempt, calls := scripted()
	require.ErrorIs(t, Do(context.Background(), Policy{}, attempt), ErrExhausted)
	require.Equal(t, MaxAttempts, *calls)
}

func TestDo_CancelledContextStopsBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Do(ctx, Policy{MaxAttempts: 5, BaseDelay: time.Hour}, func(ctx context.Context, n int) (bool, error) {
		calls++
		cancel()
		return false, nil
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}

func TestPolicyDelayIsCappedExponential(t *testing.T) {
	p := Policy{BaseDelay: 10 * time.Millisecond, MaxDelay: 50 * time.Millisecond}
	require.Equal(t, 10*time.Millisecond, p.Delay(1))
	require.Equal(t, 20*time.Millisecond, p.Delay(2))
	require.Equal(t, 40*time.Millisecond, p.Delay(3))
	require.Equal(t, 50*time.Millisecond, p.Delay(4))
	require.Equal(t, 50*time.Millisecond, p.Delay(10))
	require.Zero(t, Policy{}.Delay(3))
}
