// Package queue provides an unbounded FIFO whose consumers block until an
// item arrives, the context ends or the queue is closed.
package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/gammazero/deque"
)

var ErrClosed = errors.New("queue closed")

type Queue[T any] struct {
	mu     sync.Mutex
	items  deque.Deque[T]
	closed bool

	notify chan struct{}
	done   chan struct{}
}

func New[T any]() *Queue[T] {
	return &Queue[T]{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Put appends item. It never blocks.
func (q *Queue[T]) Put(item T) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.items.PushBack(item)
	q.mu.Unlock()

	q.wake()
	return nil
}

// Take removes the oldest item, waiting for one if the queue is empty.
// Items still queued are handed out after Close; ErrClosed is returned
// only once the queue is closed and empty.
func (q *Queue[T]) Take(ctx context.Context) (T, error) {
	var zero T
	for {
		q.mu.Lock()
		if q.items.Len() > 0 {
			item := q.items.PopFront()
			more := q.items.Len() > 0
			q.mu.Unlock()
			if more {
				// pass the baton to the next waiter
				q.wake()
			}
			return item, nil
		}
		closed := q.closed
		q.mu.Unlock()

		if closed {
			return zero, ErrClosed
		}

		select {
		case <-q.notify:
		case <-q.done:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// TryTake is the non-blocking form of Take.
func (q *Queue[T]) TryTake() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if q.items.Len() == 0 {
		return zero, false
	}
	return q.items.PopFront(), true
}

// Close rejects further Puts and wakes every waiter. Safe to call twice.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.done)
}

func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.items.Len()
}

// Items copies the queued items, oldest first, without removing them.
func (q *Queue[T]) Items() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]T, 0, q.items.Len())
	for i := 0; i < q.items.Len(); i++ {
		out = append(out, q.items.At(i))
	}
	return out
}

func (q *Queue[T]) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
