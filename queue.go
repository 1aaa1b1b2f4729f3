package flowz

import (
	"context"
	"sync"
)

// QueueState describes the lifecycle of a BoundedQueue.
type QueueState int32

const (
	// QueueOpen accepts pushes and pops.
	QueueOpen QueueState = iota
	// QueueDraining is closed to pushes but still holds undelivered items.
	QueueDraining
	// QueueClosed is closed and fully drained. Terminal.
	QueueClosed
)

func (s QueueState) String() string {
	switch s {
	case QueueOpen:
		return "open"
	case QueueDraining:
		return "draining"
	default:
		return "closed"
	}
}

// BoundedQueue is a fixed-capacity FIFO decoupling a producer from a
// consumer. Push blocks while the queue is full; Pop blocks while it is
// empty. Close is a one-way, idempotent transition: pushes after Close
// return ErrQueueClosed instead of panicking, which makes the queue
// safe for multiple concurrent producers tearing down in any order.
//
// Go channels panic on send-after-close, so the internal channel is
// never closed; end-of-stream is delivered to Pop through a separate
// close signal once the buffer has drained.
type BoundedQueue[T any] struct {
	ch     chan T
	closed chan struct{} // closed when Close() is called

	mu       sync.RWMutex // serializes isClosed with Close
	isClosed bool
	once     sync.Once
}

// NewBoundedQueue creates a queue with the given capacity. Capacity
// below 1 is treated as 1.
func NewBoundedQueue[T any](capacity int) *BoundedQueue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &BoundedQueue[T]{
		ch:     make(chan T, capacity),
		closed: make(chan struct{}),
	}
}

// Push enqueues v, blocking while the queue is full. It returns
// ErrQueueClosed if the queue has been closed, or the context error if
// ctx is canceled while waiting.
func (q *BoundedQueue[T]) Push(ctx context.Context, v T) error {
	q.mu.RLock()
	if q.isClosed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}

	// Fast path: room in the buffer while holding the read lock.
	select {
	case q.ch <- v:
		q.mu.RUnlock()
		return nil
	default:
	}
	q.mu.RUnlock()

	// Full: block outside the lock, watching for close and cancellation.
	select {
	case q.ch <- v:
		return nil
	case <-q.closed:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pop dequeues the next item, blocking while the queue is empty. The
// second return is false once the queue is closed and fully drained.
// Pop returns the context error if ctx is canceled while waiting.
func (q *BoundedQueue[T]) Pop(ctx context.Context) (T, bool, error) {
	var zero T

	// Prefer buffered items over the close signal so Draining delivers
	// everything before end-of-stream.
	select {
	case v := <-q.ch:
		return v, true, nil
	default:
	}

	select {
	case v := <-q.ch:
		return v, true, nil
	case <-q.closed:
		select {
		case v := <-q.ch:
			return v, true, nil
		default:
			return zero, false, nil
		}
	case <-ctx.Done():
		return zero, false, ctx.Err()
	}
}

// Close marks the queue closed. Items already enqueued remain poppable;
// subsequent pushes fail with ErrQueueClosed. Close is idempotent.
func (q *BoundedQueue[T]) Close() {
	q.once.Do(func() {
		q.mu.Lock()
		q.isClosed = true
		q.mu.Unlock()
		close(q.closed)
	})
}

// Len returns the number of buffered items.
func (q *BoundedQueue[T]) Len() int {
	return len(q.ch)
}

// Cap returns the queue capacity.
func (q *BoundedQueue[T]) Cap() int {
	return cap(q.ch)
}

// State reports the queue lifecycle state.
func (q *BoundedQueue[T]) State() QueueState {
	q.mu.RLock()
	closed := q.isClosed
	q.mu.RUnlock()

	if !closed {
		return QueueOpen
	}
	if len(q.ch) > 0 {
		return QueueDraining
	}
	return QueueClosed
}
