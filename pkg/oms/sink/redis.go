package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/joripage/matching-engine/pkg/oms"
	"github.com/redis/go-redis/v9"
)

type listWriter interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
}

// RedisSink appends dead letters to a list, oldest first, optionally
// capped to the newest maxLen entries.
type RedisSink struct {
	client listWriter
	key    string
	maxLen int64
}

func NewRedisSink(client listWriter, key string, maxLen int64) *RedisSink {
	return &RedisSink{client: client, key: key, maxLen: maxLen}
}

func (s *RedisSink) Name() string {
	return "redis:" + s.key
}

func (s *RedisSink) Publish(ctx context.Context, letter oms.DeadLetter) error {
	payload, err := json.Marshal(letter)
	if err != nil {
		return fmt.Errorf("marshal dead letter: %w", err)
	}

	n, err := s.client.RPush(ctx, s.key, payload).Result()
	if err != nil {
		return fmt.Errorf("rpush %s: %w", s.key, err)
	}
	if s.maxLen > 0 && n > s.maxLen {
		if err := s.client.LTrim(ctx, s.key, -s.maxLen, -1).Err(); err != nil {
			return fmt.Errorf("ltrim %s: %w", s.key, err)
		}
	}
	return nil
}

var _ oms.DeadLetterSink = (*RedisSink)(nil)
