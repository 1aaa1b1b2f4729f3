package flowz

import (
	"context"
	"sync"
)

// MergeConcurrently maps each upstream value to a sub-stream via fn
// and runs at most limit sub-streams at once, interleaving their
// results into a single stream. Order across sub-streams is not
// defined; within one sub-stream it is preserved.
//
// When all limit slots are busy, upstream dispatch blocks until a
// sub-stream finishes, so the emitter never runs more than limit
// sub-streams ahead. A failure in any sub-stream, or an upstream
// failure, cancels the siblings and fails the merged stream.
func MergeConcurrently[In, Out any](s *Stream[In], limit int, fn func(In) *Stream[Out]) *Stream[Out] {
	if limit < 1 {
		limit = 1
	}
	prev := s.run
	return &Stream[Out]{run: func(ctx context.Context, ec ExecutionContext, sink func(Result[Out]) error) error {
		mctx, cancel := context.WithCancel(ctx)
		defer cancel()

		q := NewBoundedQueue[Result[Out]](limit)
		slots := make(chan struct{}, limit)
		var wg sync.WaitGroup

		done := make(chan error, 1)
		ec.Execute(func() {
			err := prev(mctx, ec, func(r Result[In]) error {
				if r.IsError() {
					if perr := q.Push(mctx, errAs[In, Out](r.Error())); perr != nil {
						return perr
					}
					cancel()
					return mctx.Err()
				}
				// Hold dispatch until a slot frees.
				select {
				case slots <- struct{}{}:
				case <-mctx.Done():
					return mctx.Err()
				}
				item := r.Value()
				wg.Add(1)
				ec.Execute(func() {
					defer wg.Done()
					defer func() { <-slots }()
					_ = fn(item).run(mctx, ec, func(sr Result[Out]) error {
						if perr := q.Push(mctx, sr); perr != nil {
							return perr
						}
						if sr.IsError() {
							cancel()
							return mctx.Err()
						}
						return nil
					})
				})
				return nil
			})
			wg.Wait()
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
	}}
}
