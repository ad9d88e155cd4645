package search

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/yumyai/snpseek/logger"
	"github.com/yumyai/snpseek/pkg/db"
)

// RetryPolicy bounds every store call: each attempt runs under LeafTimeout
// and failed attempts back off exponentially up to MaxBackoff.
type RetryPolicy struct {
	Attempts       int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	LeafTimeout    time.Duration
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	d := p.InitialBackoff << attempt
	if d < 0 || (p.MaxBackoff > 0 && d > p.MaxBackoff) {
		d = p.MaxBackoff
	}
	return d
}

func (p RetryPolicy) once(ctx context.Context, fn func(context.Context) error) error {
	if p.LeafTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.LeafTimeout)
		defer cancel()
	}
	return fn(ctx)
}

// retryable reports whether err may succeed on another attempt. Misses and
// cancellation of the request itself are final.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	return !errors.Is(err, db.ErrNotFound) && !errors.Is(err, context.Canceled)
}

// run calls fn until it succeeds, fails for good, or attempts run out.
func (p RetryPolicy) run(ctx context.Context, op string, fn func(context.Context) error) error {
	attempts := max(p.Attempts, 1)
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		start := time.Now()
		err = p.once(ctx, fn)
		storeCallDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		if err == nil {
			return nil
		}
		if !retryable(ctx, err) || attempt == attempts-1 {
			break
		}

		wait := p.backoff(attempt)
		storeCallRetries.WithLabelValues(op).Inc()
		logger.Warn("Retrying store call",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

func retryValue[T any](ctx context.Context, p RetryPolicy, op string, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := p.run(ctx, op, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
