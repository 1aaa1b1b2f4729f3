package flowz

import "context"

// Map transforms each value with a pure function. The stage is fused:
// fn runs inline in the upstream's delivery path, with no goroutine or
// queue of its own. Errors from upstream pass through with the item
// dropped at the type boundary.
func Map[In, Out any](s *Stream[In], fn func(In) Out) *Stream[Out] {
	prev := s.run
	return &Stream[Out]{run: func(ctx context.Context, ec ExecutionContext, sink func(Result[Out]) error) error {
		return prev(ctx, ec, func(r Result[In]) error {
			if r.IsError() {
				return sink(errAs[In, Out](r.Error()))
			}
			return sink(NewSuccess(fn(r.Value())))
		})
	}}
}

// TryMap transforms each value with a fallible function. A non-nil
// error from fn becomes an error Result attributed to the named stage;
// Collect surfaces it and the stream fails.
func TryMap[In, Out any](s *Stream[In], name string, fn func(In) (Out, error)) *Stream[Out] {
	prev := s.run
	return &Stream[Out]{run: func(ctx context.Context, ec ExecutionContext, sink func(Result[Out]) error) error {
		return prev(ctx, ec, func(r Result[In]) error {
			if r.IsError() {
				return sink(errAs[In, Out](r.Error()))
			}
			out, err := fn(r.Value())
			if err != nil {
				var zero Out
				return sink(NewError(zero, err, name))
			}
			return sink(NewSuccess(out))
		})
	}}
}

// Filter drops values for which pred returns false. Errors pass
// through unconditionally.
func (s *Stream[T]) Filter(pred func(T) bool) *Stream[T] {
	prev := s.run
	return &Stream[T]{run: func(ctx context.Context, ec ExecutionContext, sink func(Result[T]) error) error {
		return prev(ctx, ec, func(r Result[T]) error {
			if r.IsSuccess() && !pred(r.Value()) {
				return nil
			}
			return sink(r)
		})
	}}
}
