package flowz

import (
	"context"
	"time"
)

// Emitter produces a lazy, possibly infinite sequence of values. It is
// invoked fresh by every terminal Collect (cold semantics), so it must
// be safe to re-run from the start.
//
// The emitter calls emit once per value and stops when emit returns a
// non-nil error, which signals that downstream has been canceled or
// has gone away. Returning a non-nil error from the emitter itself
// fails the whole stream; returning nil signals normal completion.
type Emitter[T any] func(ctx context.Context, emit func(T) error) error

// FromSlice returns an emitter producing the items of a slice in order.
func FromSlice[T any](items []T) Emitter[T] {
	return func(_ context.Context, emit func(T) error) error {
		for _, v := range items {
			if err := emit(v); err != nil {
				return err
			}
		}
		return nil
	}
}

// Generate returns an infinite emitter producing fn(0), fn(1), ...
// Pair it with Take or a canceled context; it never completes on its own.
func Generate[T any](fn func(i int) T) Emitter[T] {
	return func(_ context.Context, emit func(T) error) error {
		for i := 0; ; i++ {
			if err := emit(fn(i)); err != nil {
				return err
			}
		}
	}
}

// Tick returns an infinite emitter producing the current time every
// interval, using the given clock. With a fake clock the emissions are
// fully deterministic.
func Tick(clock Clock, interval time.Duration) Emitter[time.Time] {
	return func(ctx context.Context, emit func(time.Time) error) error {
		ticker := clock.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case t := <-ticker.C():
				if err := emit(t); err != nil {
					return err
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
