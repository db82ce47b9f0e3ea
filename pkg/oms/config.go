package oms

import (
	"fmt"
	"time"
)

// ReadConsistency selects how GetBySymbol reads the two sides of a book.
type ReadConsistency string

const (
	// ReadRelaxed copies each side under its own short lock hold. A match
	// can land between the two copies.
	ReadRelaxed ReadConsistency = "relaxed"
	// ReadSnapshot copies both sides under a single lock hold.
	ReadSnapshot ReadConsistency = "snapshot"
)

const (
	defaultPoolSize      = 4
	defaultRetryCount    = 3
	defaultBaseDelay     = 100 * time.Millisecond
	defaultShutdownGrace = 5 * time.Second
)

// Config tunes the order processor. Zero PoolSize and RetryCount mean the
// default. The delay fields are pointers so an explicit 0 is kept: no
// backoff between attempts, or no grace before in-flight work is aborted.
type Config struct {
	PoolSize             int             `yaml:"pool_size"`
	RetryCount           int             `yaml:"retry_count"`
	BaseDelayMs          *int64          `yaml:"base_delay_ms"`
	ShutdownGraceMs      *int64          `yaml:"shutdown_grace_ms"`
	DropOnForcedShutdown bool            `yaml:"drop_on_forced_shutdown"`
	ReadConsistency      ReadConsistency `yaml:"read_consistency"`
}

// DefaultConfig returns the processor defaults: 4 workers, 3 attempts,
// 100ms linear backoff step, 5s shutdown grace.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.PoolSize == 0 {
		c.PoolSize = defaultPoolSize
	}
	if c.RetryCount == 0 {
		c.RetryCount = defaultRetryCount
	}
	if c.BaseDelayMs == nil {
		c.BaseDelayMs = Millis(defaultBaseDelay.Milliseconds())
	}
	if c.ShutdownGraceMs == nil {
		c.ShutdownGraceMs = Millis(defaultShutdownGrace.Milliseconds())
	}
	if c.ReadConsistency == "" {
		c.ReadConsistency = ReadRelaxed
	}
}

func (c *Config) Validate() error {
	if c.PoolSize < 1 {
		return fmt.Errorf("pool_size must be >= 1, got %d", c.PoolSize)
	}
	if c.RetryCount < 1 {
		return fmt.Errorf("retry_count must be >= 1, got %d", c.RetryCount)
	}
	if c.BaseDelayMs != nil && *c.BaseDelayMs < 0 {
		return fmt.Errorf("base_delay_ms must be >= 0, got %d", *c.BaseDelayMs)
	}
	if c.ShutdownGraceMs != nil && *c.ShutdownGraceMs < 0 {
		return fmt.Errorf("shutdown_grace_ms must be >= 0, got %d", *c.ShutdownGraceMs)
	}
	switch c.ReadConsistency {
	case ReadRelaxed, ReadSnapshot:
	default:
		return fmt.Errorf("read_consistency must be %q or %q, got %q", ReadRelaxed, ReadSnapshot, c.ReadConsistency)
	}
	return nil
}

func (c *Config) BaseDelay() time.Duration {
	if c.BaseDelayMs == nil {
		return defaultBaseDelay
	}
	return time.Duration(*c.BaseDelayMs) * time.Millisecond
}

func (c *Config) ShutdownGrace() time.Duration {
	if c.ShutdownGraceMs == nil {
		return defaultShutdownGrace
	}
	return time.Duration(*c.ShutdownGraceMs) * time.Millisecond
}

// Millis returns a pointer to ms, for building a Config in code.
func Millis(ms int64) *int64 {
	return &ms
}
