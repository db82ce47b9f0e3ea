// Command worker tails the dead-letter topic and logs every letter it
// reads, optionally mirroring them into the Redis dead-letter list.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/joripage/matching-engine/config"
	redis_wrapper "github.com/joripage/matching-engine/pkg/infra/redis"
	kafkawrapper "github.com/joripage/matching-engine/pkg/kafka_wrapper"
	"github.com/joripage/matching-engine/pkg/logging"
	"github.com/joripage/matching-engine/pkg/oms"
	"github.com/joripage/matching-engine/pkg/oms/sink"
	"go.uber.org/zap"
)

func main() {
	var configFile string
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel)).With(zap.String("service", cfg.ServiceName+"-dlq-worker"))
	zap.ReplaceGlobals(logger.Zap())
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if !cfg.Kafka.Enabled() {
		logger.Fatal(ctx, "kafka brokers and dlq_topic are required")
	}

	var mirror *sink.RedisSink
	if cfg.Redis.Enabled() {
		client, err := redis_wrapper.InitRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal(ctx, "init redis", zap.Error(err))
		}
		defer client.Close()
		mirror = sink.NewRedisSink(client, cfg.Redis.DeadLetterKey, cfg.Redis.DeadLetterMaxLen)
	}

	groupID := cfg.Kafka.GroupID
	if groupID == "" {
		groupID = cfg.ServiceName + "-dlq"
	}
	consumer := kafkawrapper.NewConsumer(kafkawrapper.ConsumerConfig{
		Brokers:    cfg.Kafka.Brokers,
		GroupID:    groupID,
		Topic:      cfg.Kafka.Topic,
		MaxRetries: 3,
	})
	defer consumer.Close()

	handle := func(ctx context.Context, msg kafkawrapper.Message) error {
		var letter oms.DeadLetter
		if err := json.Unmarshal(msg.Value, &letter); err != nil {
			// a malformed letter never becomes valid
			logger.Error(ctx, "skip malformed dead letter", zap.Int64("offset", msg.Offset), zap.Error(err))
			return nil
		}

		logger.Warn(ctx, "dead letter",
			zap.Int64("order_id", letter.Order.ID),
			zap.String("symbol", letter.Order.Symbol),
			zap.Int("attempts", letter.Attempts),
			zap.String("reason", letter.Reason),
			zap.Time("at", letter.At),
		)
		if mirror != nil {
			if err := mirror.Publish(ctx, letter); err != nil {
				return fmt.Errorf("mirror order %d: %w", letter.Order.ID, err)
			}
		}
		return nil
	}
	giveUp := func(msg kafkawrapper.Message, err error) {
		logger.Error(ctx, "dead letter not mirrored", zap.ByteString("key", msg.Key), zap.Error(err))
	}

	logger.Info(ctx, "tailing dead-letter topic", zap.String("topic", cfg.Kafka.Topic), zap.String("group_id", groupID))
	if err := consumer.Run(ctx, handle, giveUp); err != nil {
		logger.Fatal(ctx, "consumer stopped", zap.Error(err))
	}
}
