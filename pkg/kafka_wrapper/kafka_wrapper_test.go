package kafkawrapper

import (
	"context"
	"testing"
	"time"

	"github.com/cenkalti/backoff"
	kafka "github.com/segmentio/kafka-go"
)

func TestDLQConfigEnabled(t *testing.T) {
	var nilCfg *DLQConfig
	if nilCfg.Enabled() {
		t.Fatal("nil config enabled")
	}
	if (&DLQConfig{Topic: "dlq"}).Enabled() {
		t.Fatal("config without brokers enabled")
	}
	if !(&DLQConfig{Brokers: []string{"localhost:9092"}, Topic: "dlq"}).Enabled() {
		t.Fatal("complete config disabled")
	}
}

func TestNewProducerDefaults(t *testing.T) {
	p := NewProducer(ProducerConfig{Brokers: []string{"localhost:9092"}})
	defer p.Close()

	if p.w.RequiredAcks != kafka.RequireOne {
		t.Fatalf("expected RequireOne, got %v", p.w.RequiredAcks)
	}
	if p.w.Async {
		t.Fatal("expected synchronous writer")
	}
	if _, ok := p.w.Balancer.(*kafka.Hash); !ok {
		t.Fatalf("expected hash balancer, got %T", p.w.Balancer)
	}
}

func TestNilProducer(t *testing.T) {
	var p *Producer
	if err := p.Publish(context.Background(), "t", nil, nil, nil); err != ErrNotInitialized {
		t.Fatalf("expected ErrNotInitialized, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close on nil producer: %v", err)
	}
}

func TestWrapMessage(t *testing.T) {
	now := time.Now()
	m := wrapMessage(kafka.Message{
		Topic:     "orders.dlq",
		Partition: 2,
		Offset:    17,
		Key:       []byte("42"),
		Value:     []byte(`{}`),
		Time:      now,
		Headers:   toHeaders(map[string]string{"reason": "boom"}),
	})

	if m.Topic != "orders.dlq" || m.Partition != 2 || m.Offset != 17 || string(m.Key) != "42" {
		t.Fatalf("unexpected message %+v", m)
	}
	if m.Headers["reason"] != "boom" {
		t.Fatalf("header lost: %+v", m.Headers)
	}
	if toHeaders(nil) != nil {
		t.Fatal("expected nil headers for empty map")
	}
}

func TestConsumerRetryPolicy(t *testing.T) {
	c := &Consumer{cfg: ConsumerConfig{MaxRetries: 2}}
	c.cfg.applyDefaults()

	b := c.retryPolicy()
	b.Reset()
	for i := 0; i < 2; i++ {
		if d := b.NextBackOff(); d <= 0 {
			t.Fatalf("retry %d: expected positive delay, got %v", i, d)
		}
	}
	if d := b.NextBackOff(); d != backoff.Stop {
		t.Fatalf("expected stop after max retries, got %v", d)
	}
}
