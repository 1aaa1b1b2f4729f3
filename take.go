package flowz

import (
	"context"
	"errors"
)

// Take passes through the first n successful values, then stops the
// upstream. Works on infinite emitters: once the count is reached the
// emitter's next emit is refused and it unwinds. Errors pass through
// and do not count toward n.
func (s *Stream[T]) Take(n int) *Stream[T] {
	prev := s.run
	return &Stream[T]{run: func(ctx context.Context, ec ExecutionContext, sink func(Result[T]) error) error {
		if n <= 0 {
			return nil
		}
		taken := 0
		full := errors.New("flowz: take satisfied")
		err := prev(ctx, ec, func(r Result[T]) error {
			if serr := sink(r); serr != nil {
				return serr
			}
			if r.IsSuccess() {
				taken++
				if taken >= n {
					return full
				}
			}
			return nil
		})
		// Stopping the upstream ourselves is normal completion.
		if errors.Is(err, full) {
			return nil
		}
		return err
	}}
}
