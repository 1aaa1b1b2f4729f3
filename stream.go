package flowz

import (
	"context"
	"errors"
	"sync/atomic"
)

// StreamState describes the lifecycle of a Stream's most recent Collect.
type StreamState int32

const (
	// StreamNotStarted means Collect has never been called.
	StreamNotStarted StreamState = iota
	// StreamRunning means a Collect is in flight.
	StreamRunning
	// StreamCompleted means the last Collect exhausted the emitter.
	StreamCompleted
	// StreamFailed means the last Collect surfaced a failure.
	StreamFailed
	// StreamCancelled means the last Collect was canceled.
	StreamCancelled
)

func (s StreamState) String() string {
	switch s {
	case StreamNotStarted:
		return "not-started"
	case StreamRunning:
		return "running"
	case StreamCompleted:
		return "completed"
	case StreamFailed:
		return "failed"
	default:
		return "cancelled"
	}
}

// Stream is a lazily composed pipeline of stages over an Emitter.
// Composition is pure data: nothing executes until Collect, and each
// Collect builds fresh execution state, re-running the emitter from
// the start (cold semantics).
//
// Synchronous stages (Map, TryMap, Filter, Tap, Take, Delay) are fused:
// each value flows through them as a direct call chain with no
// intermediate goroutines or channels. Only Buffer, On, and
// MergeConcurrently introduce an asynchronous boundary, and there the
// BoundedQueue is the sole decoupling point, so the emitter can run
// ahead of the consumer by exactly the queue capacity and no more.
//
// The run function pushes every value into sink, sequentially, from a
// single goroutine at a time. A non-nil error from sink stops the
// upstream; run returns that error (or a context error) for plumbing,
// while stream failures travel as error Results through the sink.
type Stream[T any] struct {
	run     func(ctx context.Context, ec ExecutionContext, sink func(Result[T]) error) error
	running atomic.Bool
	state   atomic.Int32
}

// From creates a stream over an emitter. The emitter is not invoked
// until Collect.
func From[T any](emitter Emitter[T]) *Stream[T] {
	return &Stream[T]{run: func(ctx context.Context, _ ExecutionContext, sink func(Result[T]) error) error {
		var stopped error
		err := emitter(ctx, func(v T) error {
			if cerr := ctx.Err(); cerr != nil {
				stopped = cerr
				return cerr
			}
			if serr := sink(NewSuccess(v)); serr != nil {
				stopped = serr
				return serr
			}
			return nil
		})
		if err == nil {
			return nil
		}
		// An error the emitter did not receive from emit is the
		// emitter's own failure; deliver it downstream as data.
		if (stopped == nil || !errors.Is(err, stopped)) && !IsCanceled(err) {
			var zero T
			return sink(NewError(zero, err, "emit"))
		}
		return err
	}}
}

// On runs all upstream stages (the emitter and every stage composed
// before this call) on the given ExecutionContext. Downstream stages
// and the collecting caller are unaffected.
//
// On is an asynchronous boundary: it occupies one long-lived task on
// ec for the duration of a Collect, as does every Buffer and
// MergeConcurrently composed upstream of it. A WorkerPool used here
// must have at least that many workers or the pipeline stalls waiting
// for a free worker.
func (s *Stream[T]) On(ec ExecutionContext) *Stream[T] {
	prev := s.run
	return &Stream[T]{run: func(ctx context.Context, _ ExecutionContext, sink func(Result[T]) error) error {
		return handoff(ctx, ec, 1, prev, sink)
	}}
}

// Collect is the sole terminal operation. It starts the composed
// pipeline from the emitter through every stage, delivering each value
// to consumer in stream order, and blocks until the stream is
// exhausted, fails, or is canceled.
//
// The outcome is a single value: nil on completion, the first observed
// failure, or ctx's error if ctx was canceled (cancellation wins over
// a near-simultaneous failure; use IsCanceled to tell them apart).
// A consumer error fails the stream the same way a stage error does.
//
// Each Collect call re-runs the emitter from scratch. Calling Collect
// while another Collect on the same Stream is still running returns
// ErrCollectRunning.
func (s *Stream[T]) Collect(ctx context.Context, consumer func(T) error) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrCollectRunning
	}
	defer s.running.Store(false)

	s.state.Store(int32(StreamRunning))

	cctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var failure error
	stop := errors.New("flowz: collect stopped")

	// The run return carries only plumbing (stop requests, context
	// errors); everything that decides the outcome arrives via sink.
	_ = s.run(cctx, Background, func(r Result[T]) error {
		if r.IsError() {
			failure = r.Error()
			cancel()
			return stop
		}
		if err := consumer(r.Value()); err != nil {
			failure = err
			cancel()
			return stop
		}
		return nil
	})

	// Cancellation of the caller's context takes precedence over an
	// in-flight failure.
	if err := ctx.Err(); err != nil {
		s.state.Store(int32(StreamCancelled))
		return err
	}
	if failure != nil {
		if IsCanceled(failure) {
			s.state.Store(int32(StreamCancelled))
		} else {
			s.state.Store(int32(StreamFailed))
		}
		return failure
	}

	s.state.Store(int32(StreamCompleted))
	return nil
}

// State reports the lifecycle state of the most recent Collect.
func (s *Stream[T]) State() StreamState {
	return StreamState(s.state.Load())
}

// CollectValues runs the stream and returns every value as a slice.
// Convenience wrapper around Collect.
func CollectValues[T any](ctx context.Context, s *Stream[T]) ([]T, error) {
	var values []T
	err := s.Collect(ctx, func(v T) error {
		values = append(values, v)
		return nil
	})
	return values, err
}
