package s3

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
)

// RetryPolicy bounds how often and how patiently transient storage errors
// are retried. MaxAttempts counts every try including the first. The zero
// value tries once and never waits. A zero MaxDelay falls back to the
// default cap, so backoff growth is always bounded.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

const defaultMaxDelay = 10 * time.Second

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   200 * time.Millisecond,
		MaxDelay:    defaultMaxDelay,
	}
}

// Attempts is MaxAttempts clamped to at least one try.
func (p RetryPolicy) Attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Delay returns the jittered backoff to wait after attempt failures
// (attempt is 0-based: the wait before the first retry is Delay(0)).
// Growth is capped at MaxDelay, or at the default cap when the policy
// sets none.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if p.BaseDelay <= 0 {
		return 0
	}
	limit := p.MaxDelay
	if limit <= 0 {
		limit = defaultMaxDelay
	}
	d := p.BaseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= limit || d <= 0 { // d <= 0 is doubling overflow
			d = limit
			break
		}
	}
	if d > limit {
		d = limit
	}
	// equal jitter: keep half, randomize the rest
	half := d / 2
	return half + time.Duration(rand.Int63n(int64(half)+1))
}

// Wait blocks for the backoff after attempt failures, or until ctx is done.
func (p RetryPolicy) Wait(ctx context.Context, attempt int) error {
	return sleepCtx(ctx, p.Delay(attempt))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
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

// retryTransient runs fn until it succeeds, fails with a non-transient
// error, or exhausts the policy. Non-transient errors come back unwrapped
// so the call site decides their severity.
func retryTransient(ctx context.Context, p RetryPolicy, op string, fn func() error) error {
	attempts := p.Attempts()
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !IsTransient(err) {
			return err
		}
		if attempt >= attempts {
			return WrapTransient(err, fmt.Sprintf("%s: giving up after %d attempts", op, attempts))
		}
		delay := p.Delay(attempt - 1)
		log.Warn().Err(err).Str("op", op).Int("attempt", attempt).Dur("backoff", delay).
			Msg("transient storage error, retrying")
		if serr := sleepCtx(ctx, delay); serr != nil {
			return serr
		}
	}
}
