package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestFIFO(t *testing.T) {
	q := New[int]()
	for i := 0; i < 5; i++ {
		if err := q.Put(i); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	if q.Len() != 5 {
		t.Fatalf("expected len 5, got %d", q.Len())
	}

	for i := 0; i < 5; i++ {
		got, err := q.Take(context.Background())
		if err != nil {
			t.Fatalf("take: %v", err)
		}
		if got != i {
			t.Errorf("expected %d, got %d", i, got)
		}
	}
}

func TestTakeBlocksUntilPut(t *testing.T) {
	q := New[string]()
	got := make(chan string, 1)
	go func() {
		v, _ := q.Take(context.Background())
		got <- v
	}()

	select {
	case v := <-got:
		t.Fatalf("take returned %q before any put", v)
	case <-time.After(20 * time.Millisecond):
	}

	_ = q.Put("x")
	select {
	case v := <-got:
		if v != "x" {
			t.Errorf("expected x, got %q", v)
		}
	case <-time.After(time.Second):
		t.Fatal("take did not wake up")
	}
}

func TestTakeContextCancel(t *testing.T) {
	q := New[int]()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := q.Take(ctx)
		errCh <- err
	}()

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("take ignored cancellation")
	}
}

func TestClose(t *testing.T) {
	q := New[int]()
	_ = q.Put(1)
	q.Close()
	q.Close()

	if err := q.Put(2); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed on put, got %v", err)
	}
	if v, err := q.Take(context.Background()); err != nil || v != 1 {
		t.Errorf("expected queued item after close, got %d %v", v, err)
	}
	if _, err := q.Take(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed on empty closed queue, got %v", err)
	}
}

func TestCloseWakesWaiters(t *testing.T) {
	q := New[int]()
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := q.Take(context.Background()); !errors.Is(err, ErrClosed) {
				t.Errorf("expected ErrClosed, got %v", err)
			}
		}()
	}

	time.Sleep(10 * time.Millisecond)
	q.Close()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiters not released by close")
	}
}

func TestConcurrentConsumersSeeEveryItemOnce(t *testing.T) {
	q := New[int]()
	const n = 5000

	var mu sync.Mutex
	seen := make(map[int]int)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				v, err := q.Take(ctx)
				if err != nil {
					return
				}
				mu.Lock()
				seen[v]++
				mu.Unlock()
			}
		}()
	}

	for i := 0; i < n; i++ {
		_ = q.Put(i)
	}
	deadline := time.Now().Add(5 * time.Second)
	for q.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	q.Close()
	wg.Wait()

	if len(seen) != n {
		t.Fatalf("expected %d distinct items, got %d", n, len(seen))
	}
	for v, c := range seen {
		if c != 1 {
			t.Errorf("item %d delivered %d times", v, c)
		}
	}
}

func TestItemsAndTryTake(t *testing.T) {
	q := New[int]()
	if _, ok := q.TryTake(); ok {
		t.Fatal("expected empty queue")
	}
	_ = q.Put(1)
	_ = q.Put(2)

	items := q.Items()
	if len(items) != 2 || items[0] != 1 || items[1] != 2 {
		t.Errorf("unexpected items %v", items)
	}
	if q.Len() != 2 {
		t.Errorf("Items must not drain, len=%d", q.Len())
	}
	if v, ok := q.TryTake(); !ok || v != 1 {
		t.Errorf("expected 1, got %d %v", v, ok)
	}
}
