package flowz

import "context"

// Buffer decouples the upstream stages from the downstream with a
// BoundedQueue of the given capacity. Upstream runs on the prevailing
// ExecutionContext and pushes into the queue; the downstream drains it.
//
// The queue is the only storage between the two sides: when it is full
// the emitter's emit call blocks inside Push, so the emitter never gets
// more than capacity values ahead of the consumer.
func (s *Stream[T]) Buffer(capacity int) *Stream[T] {
	prev := s.run
	return &Stream[T]{run: func(ctx context.Context, ec ExecutionContext, sink func(Result[T]) error) error {
		return handoff(ctx, ec, capacity, prev, sink)
	}}
}

// handoff runs prev on ec, pushing every result into a fresh
// BoundedQueue, and drains the queue into sink on the caller's
// goroutine. The queue is the sole decoupling point between the sides.
func handoff[T any](ctx context.Context, ec ExecutionContext, capacity int,
	prev func(context.Context, ExecutionContext, func(Result[T]) error) error,
	sink func(Result[T]) error,
) error {
	q := NewBoundedQueue[Result[T]](capacity)

	hctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	ec.Execute(func() {
		err := prev(hctx, ec, func(r Result[T]) error {
			return q.Push(hctx, r)
		})
		q.Close()
		done <- err
	})

	for {
		r, ok, err := q.Pop(ctx)
		if err != nil {
			cancel()
			<-done
			return err
		}
		if !ok {
			break
		}
		if err := sink(r); err != nil {
			cancel()
			<-done
			return err
		}
	}
	return <-done
}
