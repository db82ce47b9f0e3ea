package oms

import (
	"context"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joripage/matching-engine/pkg/logging"
	riskrule "github.com/joripage/matching-engine/pkg/oms/risk_rule"
	"github.com/joripage/matching-engine/pkg/orderbook"
	"github.com/joripage/matching-engine/pkg/queue"
	"go.uber.org/zap"
)

// OMS is the ingestion pipeline: it registers submitted orders, queues them
// and lets a fixed pool of workers feed them to the matcher with retries.
type OMS struct {
	matcher Matcher
	cfg     *Config
	logger  *logging.Logger
	seq     *orderbook.Sequence
	rules   []riskrule.RiskRule
	sinks   []DeadLetterSink

	orderIDMapping sync.Map // id -> *orderbook.Order, never evicted
	inFlight       sync.Map // id -> *orderbook.Order

	submissions *queue.Queue[*orderbook.Order]
	deadLetters *queue.Queue[DeadLetter]

	stats counters

	startMu sync.Mutex
	started bool
	wg      sync.WaitGroup

	// soft stops dequeuing, hard aborts backoff waits
	softCtx    context.Context
	softCancel context.CancelFunc
	hardCtx    context.Context
	hardCancel context.CancelFunc

	closed       atomic.Bool
	shutdownOnce sync.Once
}

type Option func(*OMS)

func WithLogger(logger *logging.Logger) Option {
	return func(s *OMS) {
		s.logger = logger
	}
}

// WithSequence injects the id source, e.g. to share it between engines.
func WithSequence(seq *orderbook.Sequence) Option {
	return func(s *OMS) {
		s.seq = seq
	}
}

func WithRiskRules(rules ...riskrule.RiskRule) Option {
	return func(s *OMS) {
		s.rules = append(s.rules, rules...)
	}
}

func WithDeadLetterSinks(sinks ...DeadLetterSink) Option {
	return func(s *OMS) {
		s.sinks = append(s.sinks, sinks...)
	}
}

func NewOMS(matcher Matcher, cfg *Config, opts ...Option) (*OMS, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &OMS{
		matcher:     matcher,
		cfg:         cfg,
		logger:      logging.NewNopLogger(),
		seq:         &orderbook.Sequence{},
		submissions: queue.New[*orderbook.Order](),
		deadLetters: queue.New[DeadLetter](),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.softCtx, s.softCancel = context.WithCancel(context.Background())
	s.hardCtx, s.hardCancel = context.WithCancel(context.Background())

	return s, nil
}

// Start launches the worker pool. Cancelling ctx stops intake the same way
// the first phase of Shutdown does: Submit is rejected and workers stop
// taking queued orders.
func (s *OMS) Start(ctx context.Context) error {
	s.startMu.Lock()
	defer s.startMu.Unlock()

	if s.closed.Load() {
		return ErrShuttingDown
	}
	if s.started {
		return nil
	}
	s.started = true

	context.AfterFunc(ctx, s.stopIntake)

	for i := 0; i < s.cfg.PoolSize; i++ {
		s.wg.Add(1)
		go s.runWorker(i)
	}

	s.logger.Info(ctx, "order processor started",
		zap.Int("pool_size", s.cfg.PoolSize),
		zap.Int("max_retries", s.cfg.RetryCount),
		zap.Duration("base_delay", s.cfg.BaseDelay()),
	)
	return nil
}

// Submit validates and registers a new order and queues it for matching.
// It returns the order as created; matching happens asynchronously.
func (s *OMS) Submit(ctx context.Context, symbol string, price float64, qty int64, side orderbook.Side) (orderbook.OrderView, error) {
	logger, ctx := logging.GetLogger(ctx, s.logger)

	if err := s.validate(symbol, price, qty, side); err != nil {
		logger.Debug(ctx, "order rejected", zap.String("symbol", symbol), zap.Error(err))
		return orderbook.OrderView{}, err
	}
	if s.closed.Load() {
		return orderbook.OrderView{}, ErrShuttingDown
	}

	order := orderbook.NewOrder(s.seq.Next(), symbol, price, qty, side)
	view := order.View()
	s.AddOrderToMap(order)
	s.stats.submitted.Add(1)

	if err := s.submissions.Put(order); err != nil {
		// lost the race with Shutdown
		s.DeleteOrderByOrderID(order.ID)
		s.stats.submitted.Add(-1)
		return orderbook.OrderView{}, ErrShuttingDown
	}

	logger.Info(ctx, "order queued", zap.Stringer("order", order))
	return view, nil
}

func (s *OMS) validate(symbol string, price float64, qty int64, side orderbook.Side) error {
	if strings.TrimSpace(symbol) == "" {
		return &ValidationError{Field: "symbol", Message: "must not be blank"}
	}
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return &ValidationError{Field: "price", Message: "must be a finite number >= 0"}
	}
	if qty < 1 {
		return &ValidationError{Field: "quantity", Message: "must be >= 1"}
	}
	if !side.Valid() {
		return &ValidationError{Field: "type", Message: "must be BUY or SELL"}
	}

	candidate := orderbook.OrderView{Symbol: symbol, Price: price, Quantity: qty, Side: side}
	for _, rule := range s.rules {
		if err := rule.Check(candidate); err != nil {
			return &ValidationError{Field: "price", Message: err.Error()}
		}
	}
	return nil
}

// Shutdown stops intake, lets in-flight orders finish for up to the grace
// period, then aborts whatever is still retrying. Only the first call does
// any work.
func (s *OMS) Shutdown() error {
	s.shutdownOnce.Do(func() {
		ctx := context.Background()
		s.logger.Info(ctx, "shutting down order processor")

		s.stopIntake()

		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()

		timer := time.NewTimer(s.cfg.ShutdownGrace())
		defer timer.Stop()

		select {
		case <-done:
		case <-timer.C:
			s.logger.Warn(ctx, "forced shutdown of order processor",
				zap.Int("in_flight", s.inFlightCount()))
		}
		s.hardCancel()
		<-done

		s.logger.Info(ctx, "order processor stopped",
			zap.Int("pending", s.submissions.Len()),
			zap.Int("dead_letters", s.deadLetters.Len()),
		)
	})
	return nil
}

// stopIntake rejects further submissions and stops workers from dequeuing.
// Orders already being processed carry on.
func (s *OMS) stopIntake() {
	s.startMu.Lock()
	s.closed.Store(true)
	s.startMu.Unlock()

	s.submissions.Close()
	s.softCancel()
}

// Pending returns orders still queued and never handed to a worker.
func (s *OMS) Pending() []orderbook.OrderView {
	orders := s.submissions.Items()
	out := make([]orderbook.OrderView, len(orders))
	for i, o := range orders {
		out[i] = o.View()
	}
	return out
}

func (s *OMS) inFlightCount() int {
	n := 0
	s.inFlight.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
