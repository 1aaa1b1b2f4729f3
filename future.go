package flowz

import "context"

// Future holds the outcome of a single asynchronous computation
// started with Go. Unlike a Group it has no fail-fast siblings; it is
// the building block for racing a group or stream against a timer when
// a caller wants a timeout (neither Group nor Stream builds one in).
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

// Go starts fn on its own goroutine and returns a Future for its
// outcome.
func Go[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	go func() {
		defer close(f.done)
		f.val, f.err = fn(ctx)
	}()

	return f
}

// Wait blocks until the computation completes and returns its outcome.
// Wait may be called any number of times.
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	return f.val, f.err
}

// Done returns a channel closed when the computation completes.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}
