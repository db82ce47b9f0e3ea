package oms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/joripage/matching-engine/pkg/orderbook"
	"go.uber.org/zap"
)

func (s *OMS) runWorker(workerID int) {
	defer s.wg.Done()

	logger := s.logger.With(zap.Int("worker", workerID))
	for {
		if s.softCtx.Err() != nil {
			break
		}
		order, err := s.submissions.Take(s.softCtx)
		if err != nil {
			break
		}
		s.processOrder(workerID, order)
	}
	logger.Debug(context.Background(), "order processor worker exiting")
}

// processOrder makes up to RetryCount attempts with linear backoff and
// dead-letters the order once they are exhausted.
func (s *OMS) processOrder(workerID int, order *orderbook.Order) {
	ctx := context.Background()
	logger := s.logger.With(zap.Int("worker", workerID), zap.Int64("order_id", order.ID))

	s.inFlight.Store(order.ID, order)
	defer s.inFlight.Delete(order.ID)

	var (
		attempts int
		added    bool
	)
	operation := func() error {
		attempts++
		return s.attempt(order, &added)
	}
	notify := func(err error, next time.Duration) {
		s.stats.retried.Add(1)
		logger.Warn(ctx, "order processing attempt failed",
			zap.Int("attempt", attempts),
			zap.Duration("retry_in", next),
			zap.Error(err),
		)
	}

	policy := backoff.WithContext(retryPolicy(s.cfg.BaseDelay(), s.cfg.RetryCount), s.hardCtx)
	err := backoff.RetryNotify(operation, policy, notify)
	if err == nil {
		s.stats.processed.Add(1)
		logger.Debug(ctx, "order processed", zap.Int("attempt", attempts), zap.Stringer("order", order))
		return
	}

	if s.hardCtx.Err() != nil {
		s.handleInterrupted(order, attempts, err)
		return
	}
	s.deadLetter(order, attempts, err)
}

// attempt adds the order once and runs matching for its symbol. A panic
// in the matcher counts as a failed attempt.
func (s *OMS) attempt(order *orderbook.Order, added *bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errProcessingPanic, r)
		}
	}()

	if !*added {
		err := s.matcher.AddOrder(order)
		switch {
		case err == nil, errors.Is(err, orderbook.ErrDuplicateOrder):
			*added = true
		case errors.Is(err, orderbook.ErrInvalidOrder):
			return backoff.Permanent(fmt.Errorf("add order: %w", err))
		default:
			return fmt.Errorf("add order: %w", err)
		}
	}

	results, err := s.matcher.MatchOrders(order.Symbol)
	if err != nil {
		return fmt.Errorf("match orders: %w", err)
	}
	s.recordMatches(results)
	return nil
}

func (s *OMS) recordMatches(results []orderbook.MatchResult) {
	for _, r := range results {
		s.stats.matches.Add(1)
		s.stats.matchedQty.Add(r.Qty)
	}
}

func (s *OMS) handleInterrupted(order *orderbook.Order, attempts int, cause error) {
	if s.cfg.DropOnForcedShutdown {
		s.stats.dropped.Add(1)
		s.logger.Warn(context.Background(), "in-flight order dropped on forced shutdown",
			zap.Stringer("order", order), zap.Int("attempts", attempts), zap.Error(cause))
		return
	}
	s.deadLetter(order, attempts, fmt.Errorf("interrupted by shutdown: %w", cause))
}
