// Package pipeline carries gestures from the presentation layer to the controller and
// presentation updates back. Each direction is a single unbounded FIFO; a relay moves
// signals onto the presentation thread's own task queue one at a time.
package pipeline

import (
	"errors"
	"sync"
)

// ErrDisconnected is returned by Send once the queue has been closed.
var ErrDisconnected = errors.New("pipeline: disconnected")

// Queue is an unbounded FIFO. Any number of goroutines may Send; a single consumer is
// expected to Recv, which is what gives the queue its total order.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	closed bool
	ready  chan struct{} // holds a token while items is non-empty or the queue is closed
}

// NewQueue returns an empty open queue.
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{ready: make(chan struct{}, 1)}
}

func (q *Queue[T]) wake() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Send appends v. It never blocks.
func (q *Queue[T]) Send(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrDisconnected
	}
	q.items = append(q.items, v)
	q.wake()
	return nil
}

// Recv blocks until a value is available and returns it. Once the queue has been
// closed and drained, ok is false.
func (q *Queue[T]) Recv() (v T, ok bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			v = q.items[0]
			var zero T
			q.items[0] = zero
			q.items = q.items[1:]
			if len(q.items) > 0 {
				q.wake()
			}
			q.mu.Unlock()
			return v, true
		}
		if q.closed {
			q.wake()
			q.mu.Unlock()
			return v, false
		}
		q.mu.Unlock()
		<-q.ready
	}
}

// TryRecv is Recv without the wait.
func (q *Queue[T]) TryRecv() (v T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return v, false
	}
	v = q.items[0]
	var zero T
	q.items[0] = zero
	q.items = q.items[1:]
	return v, true
}

// Len returns the number of values waiting.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops further sends. Values already queued can still be received. Closing
// twice is harmless.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.wake()
}
