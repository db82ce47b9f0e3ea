package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joripage/matching-engine/config"
	"github.com/joripage/matching-engine/pkg/api"
	redis_wrapper "github.com/joripage/matching-engine/pkg/infra/redis"
	kafkawrapper "github.com/joripage/matching-engine/pkg/kafka_wrapper"
	"github.com/joripage/matching-engine/pkg/logging"
	"github.com/joripage/matching-engine/pkg/oms"
	"github.com/joripage/matching-engine/pkg/oms/sink"
	"github.com/joripage/matching-engine/pkg/orderbook"
	"go.uber.org/zap"
)

func main() {
	var (
		configFile string
		pprofAddr  string
	)
	flag.StringVar(&configFile, "config-file", "", "Specify config file path")
	flag.StringVar(&pprofAddr, "pprof-addr", "", "Serve net/http/pprof on this address")
	flag.Parse()

	cfg, err := config.Load(configFile)
	if err != nil {
		panic(err)
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel)).With(zap.String("service", cfg.ServiceName))
	zap.ReplaceGlobals(logger.Zap())
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if pprofAddr != "" {
		go func() {
			_ = http.ListenAndServe(pprofAddr, nil)
		}()
	}

	rules, err := cfg.RiskRules()
	if err != nil {
		logger.Fatal(ctx, "load risk rules", zap.Error(err))
	}

	opts := []oms.Option{
		oms.WithLogger(logger),
		oms.WithRiskRules(rules...),
	}

	if cfg.Redis.Enabled() {
		client, err := redis_wrapper.InitRedis(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal(ctx, "init redis", zap.Error(err))
		}
		defer client.Close()
		opts = append(opts, oms.WithDeadLetterSinks(sink.NewRedisSink(client, cfg.Redis.DeadLetterKey, cfg.Redis.DeadLetterMaxLen)))
	}
	if cfg.Kafka.Enabled() {
		producer := kafkawrapper.NewProducer(kafkawrapper.ProducerConfig{Brokers: cfg.Kafka.Brokers})
		defer producer.Close()
		opts = append(opts, oms.WithDeadLetterSinks(sink.NewKafkaSink(producer, cfg.Kafka.Topic)))
	}

	books := orderbook.NewOrderBookManager()
	engine, err := oms.NewOMS(books, cfg.Processor, opts...)
	if err != nil {
		logger.Fatal(ctx, "init order processor", zap.Error(err))
	}
	if err := engine.Start(context.Background()); err != nil {
		logger.Fatal(ctx, "start order processor", zap.Error(err))
	}

	srv := api.NewServer(cfg.HTTP, api.NewRouter(engine, logger))
	go func() {
		logger.Info(ctx, "server starting", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(ctx, "server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info(context.Background(), "shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(shutdownCtx, "server shutdown error", zap.Error(err))
	}

	_ = engine.Shutdown()
	if pending := engine.Pending(); len(pending) > 0 {
		logger.Warn(shutdownCtx, "orders never processed", zap.Int("count", len(pending)), zap.Any("orders", pending))
	}

	logger.Info(shutdownCtx, "server stopped", zap.Any("stats", engine.Stats()))
}
