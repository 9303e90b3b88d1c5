// Package retry runs a bounded optimistic write loop with capped exponential
// backoff between attempts.
package retry

import (
	"context"
	"errors"
	"time"
)

const MaxAttempts = 5

var ErrExhausted = errors.New("max retry exceeded")

type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: MaxAttempts,
		BaseDelay:   10 * time.Millisecond,
		MaxDelay:    200 * time.Millisecond,
	}
}

// Attempt performs one write. ok is false when the write did not apply (a
// conflict) and may be attempted again. A non-nil err stops the loop.
type Attempt func(ctx context.Context, n int) (ok bool, err error)

// Do calls attempt until it applies, returns an error, or the policy runs out
// of attempts, in which case ErrExhausted is returned.
func Do(ctx context.Context, p Policy, attempt Attempt) error {
	max := p.MaxAttempts
	if max <= 0 {
		max = MaxAttempts
	}

	for n := 1; n <= max; n++ {
		ok, err := attempt(ctx, n)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if n == max {
			break
		}
		if err := wait(ctx, p.Delay(n)); err != nil {
			return err
		}
	}
	return ErrExhausted
}

// Delay is the pause after the nth failed attempt.
func (p Policy) Delay(n int) time.Duration {
	if p.BaseDelay <= 0 || n < 1 {
		return 0
	}
	d := p.BaseDelay
	for i := 1; i < n; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
