package flowz

import (
	"context"
	"time"
)

// Delay waits d before passing each result through, pacing the
// upstream to at most one item per interval. The wait respects
// cancellation. Use a fake clock in tests to avoid real sleeps.
func (s *Stream[T]) Delay(clock Clock, d time.Duration) *Stream[T] {
	prev := s.run
	return &Stream[T]{run: func(ctx context.Context, ec ExecutionContext, sink func(Result[T]) error) error {
		return prev(ctx, ec, func(r Result[T]) error {
			select {
			case <-clock.After(d):
			case <-ctx.Done():
				return ctx.Err()
			}
			return sink(r)
		})
	}}
}
