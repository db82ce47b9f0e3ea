package oms

import (
	"context"
	"time"

	"github.com/joripage/matching-engine/pkg/orderbook"
	"go.uber.org/zap"
)

const sinkTimeout = 5 * time.Second

// DeadLetter records an order whose processing permanently failed.
type DeadLetter struct {
	Order    orderbook.OrderView `json:"order"`
	Attempts int                 `json:"attempts"`
	Reason   string              `json:"reason"`
	At       time.Time           `json:"at"`
}

func (s *OMS) deadLetter(order *orderbook.Order, attempts int, cause error) {
	letter := DeadLetter{
		Order:    order.View(),
		Attempts: attempts,
		Reason:   cause.Error(),
		At:       time.Now(),
	}
	_ = s.deadLetters.Put(letter)
	s.stats.deadLettered.Add(1)

	ctx := context.Background()
	s.logger.Error(ctx, "moved to dead-letter queue",
		zap.Stringer("order", order),
		zap.Int("attempts", attempts),
		zap.Error(cause),
	)

	for _, sink := range s.sinks {
		sinkCtx, cancel := context.WithTimeout(ctx, sinkTimeout)
		if err := sink.Publish(sinkCtx, letter); err != nil {
			s.logger.Warn(ctx, "dead-letter sink failed",
				zap.String("sink", sink.Name()),
				zap.Int64("order_id", order.ID),
				zap.Error(err),
			)
		}
		cancel()
	}
}

// DeadLetters copies the dead-letter queue, oldest first.
func (s *OMS) DeadLetters() []DeadLetter {
	return s.deadLetters.Items()
}

func (s *OMS) DeadLetterCount() int {
	return s.deadLetters.Len()
}

// TakeDeadLetter removes the oldest dead letter, waiting until one exists
// or ctx ends. Dead letters are never reprocessed automatically.
func (s *OMS) TakeDeadLetter(ctx context.Context) (DeadLetter, error) {
	return s.deadLetters.Take(ctx)
}
