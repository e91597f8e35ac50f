// Package decision provides the single-slot asynchronous handoff between the
// input layer and the event dispatcher. The dispatcher suspends on Await
// while the user picks a tile or an action; the read loop keeps draining the
// connection in the meantime.
package decision

import (
	"context"
	"sync"

	"github.com/tsumogiri/riichi-client/internal/model"
)

// Queue hands exactly one value per request from Submit to Await, in either
// call order. Values submitted with no consumer waiting are buffered; a
// waiting consumer is resumed immediately. The protocol never has more than
// one outstanding request, so a second concurrent Await is an error.
type Queue[T any] struct {
	mu     sync.Mutex
	buffer []T
	waiter chan T
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Submit delivers a value: directly to a suspended Await if one exists,
// otherwise into the buffer for the next Await.
func (q *Queue[T]) Submit(v T) {
	q.mu.Lock()
	if q.waiter != nil {
		w := q.waiter
		q.waiter = nil
		q.mu.Unlock()
		w <- v
		return
	}
	q.buffer = append(q.buffer, v)
	q.mu.Unlock()
}

// Await returns the next submitted value, suspending the calling goroutine
// until one arrives or ctx is done. It returns model.ErrDecisionPending if
// another Await is already suspended.
func (q *Queue[T]) Await(ctx context.Context) (T, error) {
	var zero T

	q.mu.Lock()
	if len(q.buffer) > 0 {
		v := q.buffer[0]
		q.buffer = q.buffer[1:]
		q.mu.Unlock()
		return v, nil
	}
	if q.waiter != nil {
		q.mu.Unlock()
		return zero, model.ErrDecisionPending
	}
	w := make(chan T, 1)
	q.waiter = w
	q.mu.Unlock()

	select {
	case v := <-w:
		return v, nil
	case <-ctx.Done():
		q.mu.Lock()
		if q.waiter == w {
			q.waiter = nil
			q.mu.Unlock()
			return zero, ctx.Err()
		}
		q.mu.Unlock()
		// A Submit claimed the waiter between cancellation and cleanup;
		// re-buffer the value so it is not lost.
		q.mu.Lock()
		q.buffer = append(q.buffer, <-w)
		q.mu.Unlock()
		return zero, ctx.Err()
	}
}
