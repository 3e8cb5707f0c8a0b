package executor

import (
	"fmt"
	"time"
)

// BackoffConfig shapes the delay between retry attempts.
type BackoffConfig struct {
	// Initial is the delay before the first retry.
	Initial time.Duration `yaml:"initial" mapstructure:"initial"`
	// Max caps the delay between attempts.
	Max time.Duration `yaml:"max" mapstructure:"max"`
	// Factor is the multiplier applied after each retry.
	Factor float64 `yaml:"factor" mapstructure:"factor"`
	// Jitter adds randomness to each delay (0.0 to 1.0).
	Jitter float64 `yaml:"jitter" mapstructure:"jitter"`
}

// Config contains executor configuration.
type Config struct {
	// Workers bounds how many node attempts run at once.
	Workers int `yaml:"workers" mapstructure:"workers"`
	// MaxAttempts is the attempt budget per node, including the first.
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`
	// Backoff shapes the delay between attempts of the same node.
	Backoff BackoffConfig `yaml:"backoff" mapstructure:"backoff"`
}

// ApplyDefaults applies default values to executor configuration.
func (c *Config) ApplyDefaults() {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.Backoff.Initial <= 0 {
		c.Backoff.Initial = 100 * time.Millisecond
	}
	if c.Backoff.Max <= 0 {
		c.Backoff.Max = 5 * time.Second
	}
	if c.Backoff.Factor <= 0 {
		c.Backoff.Factor = 2.0
	}
}

// Validate validates executor configuration.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("executor.workers must be at least 1 (got: %d)", c.Workers)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("executor.max_attempts must be at least 1 (got: %d)", c.MaxAttempts)
	}
	if c.Backoff.Initial <= 0 {
		return fmt.Errorf("executor.backoff.initial must be positive (got: %s)", c.Backoff.Initial)
	}
	if c.Backoff.Max < c.Backoff.Initial {
		return fmt.Errorf("executor.backoff.max must be at least the initial delay (got: %s)", c.Backoff.Max)
	}
	if c.Backoff.Factor < 1 {
		return fmt.Errorf("executor.backoff.factor must be at least 1 (got: %g)", c.Backoff.Factor)
	}
	if c.Backoff.Jitter < 0 || c.Backoff.Jitter > 1 {
		return fmt.Errorf("executor.backoff.jitter must be between 0 and 1 (got: %g)", c.Backoff.Jitter)
	}
	return nil
}
