package flowz

import "context"

// Tap invokes fn for every result, successes and failures alike, then
// passes it through unchanged. Useful for logging and instrumentation
// without disturbing the pipeline.
func (s *Stream[T]) Tap(fn func(Result[T])) *Stream[T] {
	prev := s.run
	return &Stream[T]{run: func(ctx context.Context, ec ExecutionContext, sink func(Result[T]) error) error {
		return prev(ctx, ec, func(r Result[T]) error {
			fn(r)
			return sink(r)
		})
	}}
}
