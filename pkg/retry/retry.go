// Package retry wraps transient operations in exponential backoff with a
// logged notification per attempt.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openclaw/dramawatch/pkg/logger"
)

type Config struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
}

func DefaultConfig() Config {
	return Config{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Multiplier:      1.5,
	}
}

// Do runs fn until it succeeds, the retry budget is exhausted, or ctx is
// cancelled. A backoff.Permanent error stops the attempts immediately.
func Do(ctx context.Context, log logger.Logger, name string, fn func() error, cfg Config) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialInterval
	bo.MaxInterval = cfg.MaxInterval
	bo.Multiplier = cfg.Multiplier

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, cfg.MaxRetries), ctx)

	return backoff.RetryNotify(fn, policy, func(err error, next time.Duration) {
		log.Warn("Retrying operation",
			"operation", name,
			"error", err,
			"next_attempt_in", next.Round(time.Millisecond).String(),
		)
	})
}
