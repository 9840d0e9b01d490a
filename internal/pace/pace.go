package pace

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces out calls against the rate-limited remote API. Wait blocks
// until the next call may proceed or the context is cancelled.
type Pacer interface {
	Wait(ctx context.Context) error
}

// FixedDelay sleeps a constant duration between calls. A zero or negative
// delay makes Wait a no-op.
type FixedDelay struct {
	Delay time.Duration
}

func NewFixedDelay(delay time.Duration) *FixedDelay {
	return &FixedDelay{Delay: delay}
}

func (p *FixedDelay) Wait(ctx context.Context) error {
	if p.Delay <= 0 {
		return nil
	}
	timer := time.NewTimer(p.Delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TokenBucket paces calls with a token bucket, allowing short bursts while
// holding the long-run rate. Interchangeable with FixedDelay wherever a
// Pacer is accepted.
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket allows `perSecond` calls per second with the given burst.
func NewTokenBucket(perSecond float64, burst int) *TokenBucket {
	return &TokenBucket{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (p *TokenBucket) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
