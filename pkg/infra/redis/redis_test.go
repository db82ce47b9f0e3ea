package redis_wrapper

import (
	"context"
	"testing"
	"time"
)

func TestOptions(t *testing.T) {
	cfg := &RedisConfig{
		ConnectionURL:      "redis://:secret@localhost:6380/2",
		PoolSize:           7,
		DialTimeoutSeconds: 3,
		IdleTimeoutSeconds: 30,
	}
	opts, err := cfg.Options()
	if err != nil {
		t.Fatalf("Options: %v", err)
	}
	if opts.Addr != "localhost:6380" || opts.DB != 2 || opts.Password != "secret" {
		t.Fatalf("unexpected connection options %+v", opts)
	}
	if opts.PoolSize != 7 || opts.DialTimeout != 3*time.Second || opts.ConnMaxIdleTime != 30*time.Second {
		t.Fatalf("unexpected pool options %+v", opts)
	}
}

func TestOptionsRejectsBadURL(t *testing.T) {
	cfg := &RedisConfig{ConnectionURL: "http://localhost"}
	if _, err := cfg.Options(); err == nil {
		t.Fatal("expected error for non-redis scheme")
	}
	if _, err := InitRedis(context.Background(), cfg); err == nil {
		t.Fatal("expected InitRedis to fail")
	}
}

func TestEnabledAndDefaults(t *testing.T) {
	var nilCfg *RedisConfig
	if nilCfg.Enabled() {
		t.Fatal("nil config enabled")
	}

	cfg := &RedisConfig{ConnectionURL: "redis://localhost:6379"}
	cfg.ApplyDefaults()
	if !cfg.Enabled() || cfg.DeadLetterKey != defaultDeadLetterKey {
		t.Fatalf("unexpected config %+v", cfg)
	}
}
