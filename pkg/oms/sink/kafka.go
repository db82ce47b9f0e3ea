// Package sink forwards dead letters to external systems so operators can
// inspect them outside the process.
package sink

import (
	"context"
	"strconv"

	"github.com/joripage/matching-engine/pkg/oms"
)

type jsonPublisher interface {
	PublishJSON(ctx context.Context, topic string, key string, v any, headers map[string]string) error
}

// KafkaSink writes each dead letter as JSON, keyed by order id.
type KafkaSink struct {
	producer jsonPublisher
	topic    string
}

func NewKafkaSink(producer jsonPublisher, topic string) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic}
}

func (s *KafkaSink) Name() string {
	return "kafka:" + s.topic
}

func (s *KafkaSink) Publish(ctx context.Context, letter oms.DeadLetter) error {
	headers := map[string]string{
		"symbol":   letter.Order.Symbol,
		"attempts": strconv.Itoa(letter.Attempts),
	}
	return s.producer.PublishJSON(ctx, s.topic, strconv.FormatInt(letter.Order.ID, 10), letter, headers)
}

var _ oms.DeadLetterSink = (*KafkaSink)(nil)
