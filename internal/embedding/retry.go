// Package embedding wraps an embedding provider with bounded retry and
// jittered exponential backoff.
package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultMaxAttempts = 5
	DefaultBaseDelay   = 1000 * time.Millisecond
)

var ErrRetriesExhausted = errors.New("embedding retries exhausted")

type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// RetryingEmbedder calls Provider up to maxAttempts times. After failed
// attempt k it waits baseDelay * 2^(k-1) * j, j uniform in [0.5, 1.0].
// Every provider error is retried the same way.
type RetryingEmbedder struct {
	provider    Provider
	maxAttempts int
	baseDelay   time.Duration
}

type Option func(*RetryingEmbedder)

func WithMaxAttempts(n int) Option {
	return func(e *RetryingEmbedder) {
		if n > 0 {
			e.maxAttempts = n
		}
	}
}

func WithBaseDelay(d time.Duration) Option {
	return func(e *RetryingEmbedder) {
		if d > 0 {
			e.baseDelay = d
		}
	}
}

func NewRetryingEmbedder(p Provider, opts ...Option) *RetryingEmbedder {
	e := &RetryingEmbedder{
		provider:    p,
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *RetryingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	attempt := 0

	op := func() error {
		attempt++
		v, err := e.provider.Embed(ctx, text)
		if err != nil {
			return err
		}
		vec = v
		return nil
	}

	notify := func(err error, delay time.Duration) {
		slog.WarnContext(ctx, "embedding provider error, retrying",
			"attempt", attempt,
			"max_attempts", e.maxAttempts,
			"delay_seconds", delay.Seconds(),
			"error", err)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(e.newBackOff(), uint64(e.maxAttempts-1)), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("embedding interrupted after %d attempts: %w", attempt, ctxErr)
		}
		return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempt, err)
	}

	if attempt > 1 {
		slog.DebugContext(ctx, "embedding succeeded after retry", "attempt", attempt)
	}
	return vec, nil
}

// newBackOff centres the randomized interval on 0.75*base so that
// interval*(1±1/3) spans exactly [0.5, 1.0]*base, doubling each attempt.
func (e *RetryingEmbedder) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = e.baseDelay * 3 / 4
	b.RandomizationFactor = 1.0 / 3.0
	b.Multiplier = 2
	b.MaxInterval = maxInterval(e.baseDelay, e.maxAttempts)
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// maxInterval is base doubled attempts times, saturating at the largest
// Duration.
func maxInterval(base time.Duration, attempts int) time.Duration {
	d := base
	for i := 0; i < attempts; i++ {
		if d > math.MaxInt64/2 {
			return math.MaxInt64
		}
		d *= 2
	}
	return d
}
