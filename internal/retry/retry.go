// Package retry is the single "call with retry" helper used for outbound
// calls: a fixed number of attempts with exponential backoff.
package retry

import (
	"context"
	"time"

	"ecochain-be/internal/apperr"
	"ecochain-be/internal/logger"

	"go.uber.org/zap"
)

const (
	DefaultAttempts  = 3
	DefaultBaseDelay = time.Second
)

type Policy struct {
	Attempts  int
	BaseDelay time.Duration

	// sleep is swapped out in tests
	sleep func(ctx context.Context, d time.Duration) error
}

func DefaultPolicy() Policy {
	return Policy{Attempts: DefaultAttempts, BaseDelay: DefaultBaseDelay}
}

// WithSleep returns a copy of p that waits with fn instead of a timer.
func (p Policy) WithSleep(fn func(ctx context.Context, d time.Duration) error) Policy {
	p.sleep = fn
	return p
}

// Backoff returns the wait after the n-th failed attempt (1-based): BaseDelay × 2^n.
func (p Policy) Backoff(n int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	return base * time.Duration(1<<n)
}

// Do calls fn until it succeeds, returns a permanent error, the context is
// done, or the attempts run out. Exhaustion is reported as *apperr.NetworkError.
func Do(ctx context.Context, op string, p Policy, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	log := logger.FromCtx(ctx).With(zap.String("op", op))

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if apperr.IsPermanent(err) {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt == attempts {
			break
		}

		wait := p.Backoff(attempt)
		log.Warn("attempt failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
		if serr := sleep(ctx, wait); serr != nil {
			return serr
		}
	}

	log.Error("giving up", zap.Int("attempts", attempts), zap.Error(err))
	return &apperr.NetworkError{Op: op, Attempts: attempts, Err: err}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
