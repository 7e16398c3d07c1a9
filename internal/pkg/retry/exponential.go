package retry

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/piresc/arbiter/internal/pkg/logger"
)

// Config holds retry configuration
type Config struct {
	MaxRetries int           // retries after the first attempt
	BaseDelay  time.Duration // delay before the first retry
	MaxDelay   time.Duration
	Multiplier float64
	Jitter     bool // adds up to 10% random delay
}

// DefaultConfig is tuned for connecting to backing services at startup
func DefaultConfig() Config {
	return Config{
		MaxRetries: 5,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   10 * time.Second,
		Multiplier: 2.0,
		Jitter:     true,
	}
}

// Retrier retries a function with exponential backoff
type Retrier struct {
	config Config
	sleep  func(ctx context.Context, d time.Duration) error
}

// New creates a new retrier with the given configuration
func New(config Config) *Retrier {
	return &Retrier{config: config, sleep: sleepCtx}
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

// Do calls fn until it succeeds, the retries are exhausted or ctx is done.
// name identifies the dependency in logs.
func (r *Retrier) Do(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			if attempt > 0 {
				logger.Info("Connected after retries",
					logger.String("dependency", name),
					logger.Int("attempts", attempt+1))
			}
			return nil
		}
		if attempt == r.config.MaxRetries {
			break
		}

		delay := r.Delay(attempt)
		logger.Warn("Connection attempt failed, retrying",
			logger.String("dependency", name),
			logger.Err(lastErr),
			logger.Int("attempt", attempt+1),
			logger.Duration("delay", delay))

		if err := r.sleep(ctx, delay); err != nil {
			return err
		}
	}

	return fmt.Errorf("%s: giving up after %d attempts: %w", name, r.config.MaxRetries+1, lastErr)
}

// Delay returns the backoff before retry number attempt+1
func (r *Retrier) Delay(attempt int) time.Duration {
	delay := float64(r.config.BaseDelay) * math.Pow(r.config.Multiplier, float64(attempt))
	if delay > float64(r.config.MaxDelay) {
		delay = float64(r.config.MaxDelay)
	}
	if r.config.Jitter {
		delay += delay * 0.1 * rand.Float64()
	}
	return time.Duration(delay)
}

// Connect retries a constructor with the default startup policy
func Connect[T any](ctx context.Context, name string, connect func() (T, error)) (T, error) {
	var out T
	err := New(DefaultConfig()).Do(ctx, name, func(context.Context) error {
		v, err := connect()
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
