package sink

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/joripage/matching-engine/pkg/oms"
	"github.com/joripage/matching-engine/pkg/orderbook"
	"github.com/redis/go-redis/v9"
)

func testLetter() oms.DeadLetter {
	return oms.DeadLetter{
		Order:    orderbook.OrderView{ID: 42, Symbol: "AAPL", Price: 150.5, Quantity: 10, Side: orderbook.BUY},
		Attempts: 3,
		Reason:   "match orders: matcher unavailable",
		At:       time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

type fakePublisher struct {
	topic   string
	key     string
	value   any
	headers map[string]string
	err     error
}

func (p *fakePublisher) PublishJSON(_ context.Context, topic string, key string, v any, headers map[string]string) error {
	p.topic, p.key, p.value, p.headers = topic, key, v, headers
	return p.err
}

func TestKafkaSinkPublish(t *testing.T) {
	pub := &fakePublisher{}
	s := NewKafkaSink(pub, "orders.dlq")

	if s.Name() != "kafka:orders.dlq" {
		t.Fatalf("unexpected name %q", s.Name())
	}
	if err := s.Publish(context.Background(), testLetter()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if pub.topic != "orders.dlq" || pub.key != "42" {
		t.Fatalf("published to %q with key %q", pub.topic, pub.key)
	}
	if pub.headers["symbol"] != "AAPL" || pub.headers["attempts"] != "3" {
		t.Fatalf("unexpected headers %+v", pub.headers)
	}
	if letter, ok := pub.value.(oms.DeadLetter); !ok || letter.Order.ID != 42 {
		t.Fatalf("unexpected payload %#v", pub.value)
	}
}

func TestKafkaSinkPropagatesError(t *testing.T) {
	boom := errors.New("broker down")
	s := NewKafkaSink(&fakePublisher{err: boom}, "orders.dlq")
	if err := s.Publish(context.Background(), testLetter()); !errors.Is(err, boom) {
		t.Fatalf("expected broker error, got %v", err)
	}
}

type fakeList struct {
	items   [][]byte
	trimmed bool
	pushErr error
}

func (l *fakeList) RPush(_ context.Context, _ string, values ...interface{}) *redis.IntCmd {
	if l.pushErr != nil {
		return redis.NewIntResult(0, l.pushErr)
	}
	for _, v := range values {
		l.items = append(l.items, v.([]byte))
	}
	return redis.NewIntResult(int64(len(l.items)), nil)
}

func (l *fakeList) LTrim(_ context.Context, _ string, start, stop int64) *redis.StatusCmd {
	l.trimmed = true
	if n := int64(len(l.items)); start < 0 && -start < n {
		l.items = l.items[n+start:]
	}
	return redis.NewStatusResult("OK", nil)
}

func TestRedisSinkPublish(t *testing.T) {
	list := &fakeList{}
	s := NewRedisSink(list, "engine:dead_letters", 0)

	if err := s.Publish(context.Background(), testLetter()); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(list.items) != 1 || list.trimmed {
		t.Fatalf("unexpected list state: %d items, trimmed=%v", len(list.items), list.trimmed)
	}

	var got oms.DeadLetter
	if err := json.Unmarshal(list.items[0], &got); err != nil {
		t.Fatalf("stored payload is not JSON: %v", err)
	}
	if got.Order.ID != 42 || got.Order.Side != orderbook.BUY || got.Attempts != 3 {
		t.Fatalf("unexpected stored letter %+v", got)
	}
}

func TestRedisSinkTrimsToMaxLen(t *testing.T) {
	list := &fakeList{}
	s := NewRedisSink(list, "engine:dead_letters", 2)

	for i := 0; i < 3; i++ {
		if err := s.Publish(context.Background(), testLetter()); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	if !list.trimmed || len(list.items) != 2 {
		t.Fatalf("expected list trimmed to 2, got %d (trimmed=%v)", len(list.items), list.trimmed)
	}
}

func TestRedisSinkPushError(t *testing.T) {
	boom := errors.New("connection refused")
	s := NewRedisSink(&fakeList{pushErr: boom}, "k", 0)
	if err := s.Publish(context.Background(), testLetter()); !errors.Is(err, boom) {
		t.Fatalf("expected push error, got %v", err)
	}
}
