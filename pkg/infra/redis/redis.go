package redis_wrapper

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultDeadLetterKey = "engine:dead_letters"

type RedisConfig struct {
	ConnectionURL       string `yaml:"connection_url"`
	PoolSize            int    `yaml:"pool_size"`
	DialTimeoutSeconds  int    `yaml:"dial_timeout_seconds"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	IdleTimeoutSeconds  int    `yaml:"idle_timeout_seconds"`
	ConnectRetries      int    `yaml:"connect_retries"`

	DeadLetterKey    string `yaml:"dead_letter_key"`
	DeadLetterMaxLen int64  `yaml:"dead_letter_max_len"` // 0 = unbounded
}

func (c *RedisConfig) Enabled() bool {
	return c != nil && c.ConnectionURL != ""
}

func (c *RedisConfig) ApplyDefaults() {
	if c.DeadLetterKey == "" {
		c.DeadLetterKey = defaultDeadLetterKey
	}
}

// Options translates the config into client options.
func (c *RedisConfig) Options() (*redis.Options, error) {
	opts, err := redis.ParseURL(c.ConnectionURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	if c.PoolSize > 0 {
		opts.PoolSize = c.PoolSize
	}
	if c.DialTimeoutSeconds > 0 {
		opts.DialTimeout = time.Duration(c.DialTimeoutSeconds) * time.Second
	}
	if c.ReadTimeoutSeconds > 0 {
		opts.ReadTimeout = time.Duration(c.ReadTimeoutSeconds) * time.Second
	}
	if c.WriteTimeoutSeconds > 0 {
		opts.WriteTimeout = time.Duration(c.WriteTimeoutSeconds) * time.Second
	}
	if c.IdleTimeoutSeconds > 0 {
		opts.ConnMaxIdleTime = time.Duration(c.IdleTimeoutSeconds) * time.Second
	}
	return opts, nil
}

// InitRedis creates a client and pings it, retrying the ping with
// exponential backoff up to ConnectRetries times.
func InitRedis(ctx context.Context, redisCfg *RedisConfig) (*redis.Client, error) {
	opts, err := redisCfg.Options()
	if err != nil {
		zap.S().Debugf("parse redis url fail: %+v", err)
		return nil, err
	}

	redisClient := redis.NewClient(opts)

	var policy backoff.BackOff = &backoff.StopBackOff{}
	if redisCfg.ConnectRetries > 0 {
		policy = backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(redisCfg.ConnectRetries))
	}

	ping := func() error {
		return redisClient.Ping(ctx).Err()
	}
	notify := func(err error, next time.Duration) {
		zap.S().Warnf("redis ping failed, retrying in %v: %v", next, err)
	}
	if err := backoff.RetryNotify(ping, backoff.WithContext(policy, ctx), notify); err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	zap.S().Debug("connect to redis successful")
	return redisClient, nil
}
