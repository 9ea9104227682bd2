package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"github.com/kbukum/restkit/errors"
)

// Config configures Retry.
type Config struct {
	// Attempts is the total number of attempts, the first included.
	Attempts int `yaml:"attempts" mapstructure:"attempts"`
	// Backoff is the wait before the second attempt.
	Backoff time.Duration `yaml:"backoff" mapstructure:"backoff"`
	// MaxBackoff caps the wait between attempts.
	MaxBackoff time.Duration `yaml:"max_backoff" mapstructure:"max_backoff"`
	// Factor multiplies the wait after every attempt.
	Factor float64 `yaml:"factor" mapstructure:"factor"`
	// Jitter spreads each wait by up to this fraction either way.
	Jitter float64 `yaml:"jitter" mapstructure:"jitter"`
	// RetryIf decides whether err deserves another attempt.
	RetryIf func(err error) bool `yaml:"-" mapstructure:"-"`
	// OnRetry runs before each wait.
	OnRetry func(attempt int, err error, wait time.Duration) `yaml:"-" mapstructure:"-"`
}

// DefaultConfig makes three attempts, retrying what the error taxonomy
// marks retryable: transport failures, 429 and 5xx.
func DefaultConfig() Config {
	return Config{
		Attempts:   3,
		Backoff:    100 * time.Millisecond,
		MaxBackoff: 5 * time.Second,
		Factor:     2,
		Jitter:     0.1,
		RetryIf:    errors.IsRetryable,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Attempts <= 0 {
		c.Attempts = d.Attempts
	}
	if c.Backoff <= 0 {
		c.Backoff = d.Backoff
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = d.MaxBackoff
	}
	if c.Factor <= 0 {
		c.Factor = d.Factor
	}
	if c.RetryIf == nil {
		c.RetryIf = d.RetryIf
	}
}

// Retry calls fn until it succeeds, returns an error RetryIf rejects, or
// the attempts run out. The last error is returned. A done ctx stops the
// loop with ctx.Err().
func Retry[T any](ctx context.Context, cfg Config, fn func(context.Context) (T, error)) (T, error) {
	cfg.applyDefaults()
	var zero T

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if attempt >= cfg.Attempts || !cfg.RetryIf(err) {
			return zero, err
		}

		wait := backoff(attempt, cfg)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, wait)
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

// backoff is Backoff * Factor^(attempt-1), jittered and capped.
func backoff(attempt int, cfg Config) time.Duration {
	d := float64(cfg.Backoff) * math.Pow(cfg.Factor, float64(attempt-1))
	if cfg.Jitter > 0 {
		d += (rand.Float64()*2 - 1) * d * cfg.Jitter
	}
	if d > float64(cfg.MaxBackoff) {
		d = float64(cfg.MaxBackoff)
	}
	if d <= 0 {
		d = float64(cfg.Backoff)
	}
	return time.Duration(d)
}
