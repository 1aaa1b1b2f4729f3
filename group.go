package flowz

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

// Unit is one schedulable computation yielding a value or an error.
// Units receive the group context and are expected to honor its
// cancellation; a unit that never checks runs to completion and has
// its result discarded.
type Unit[T any] func(ctx context.Context) (T, error)

// Group coordinates a fixed set of Units launched concurrently and
// joined as a single outcome. Create one with Launch; a Group is
// single-use and must be joined exactly once.
type Group[T any] struct {
	parent   context.Context
	cancel   context.CancelFunc
	results  []T
	errs     []error
	wg       sync.WaitGroup
	joined   atomic.Bool
	canceled atomic.Bool
}

// GroupOption configures a Launch call.
type GroupOption func(*groupConfig)

type groupConfig struct {
	executor ExecutionContext
	limit    int
}

// WithExecutor runs the group's units on the given ExecutionContext
// instead of Background.
func WithExecutor(ec ExecutionContext) GroupOption {
	return func(c *groupConfig) { c.executor = ec }
}

// WithLimit bounds how many units run concurrently. Units beyond the
// limit wait for a slot in launch order. Zero or negative means
// unlimited.
func WithLimit(n int) GroupOption {
	return func(c *groupConfig) { c.limit = n }
}

// Launch starts every unit concurrently, immediately (eager start).
// The returned Group must be joined exactly once. An empty slice
// yields a group whose Join returns an empty, successful result.
//
// Example:
//
//	g := flowz.Launch(ctx, []flowz.Unit[string]{unitA, unitB, unitC})
//	results, err := g.Join()
func Launch[T any](ctx context.Context, units []Unit[T], opts ...GroupOption) *Group[T] {
	cfg := groupConfig{executor: Background}
	for _, opt := range opts {
		opt(&cfg)
	}

	gctx, cancel := context.WithCancel(ctx)
	g := &Group[T]{
		parent:  ctx,
		cancel:  cancel,
		results: make([]T, len(units)),
		errs:    make([]error, len(units)),
	}

	var slots chan struct{}
	if cfg.limit > 0 {
		slots = make(chan struct{}, cfg.limit)
	}

	for i, unit := range units {
		g.wg.Add(1)
		cfg.executor.Execute(func() {
			defer g.wg.Done()

			if slots != nil {
				select {
				case slots <- struct{}{}:
					defer func() { <-slots }()
				case <-gctx.Done():
					g.errs[i] = gctx.Err()
					return
				}
			}

			v, err := unit(gctx)
			if err != nil {
				// Each goroutine owns its slot; wg.Wait orders these
				// writes before Join reads them.
				g.errs[i] = err
				if !IsCanceled(err) {
					// Fail fast: ask the siblings to stop.
					cancel()
				}
				return
			}
			g.results[i] = v
		})
	}

	return g
}

// Join suspends the caller until the group's outcome is decided. On
// success it returns every unit's result in launch order, regardless
// of completion order. On failure it returns the failure of the
// lowest-indexed failed unit, wrapped in a *UnitError; the other
// units' results are discarded.
//
// If the group was canceled, through the parent context or Cancel,
// Join reports the cancellation instead of a success or an ordinary
// failure, even when a unit failure was recorded first. Use IsCanceled
// to distinguish the two.
//
// Join waits for every unit to return (cancellation is cooperative),
// and may be called at most once; further calls return ErrAlreadyJoined.
func (g *Group[T]) Join() ([]T, error) {
	if !g.joined.CompareAndSwap(false, true) {
		return nil, ErrAlreadyJoined
	}

	g.wg.Wait()
	defer g.cancel()

	if err := g.parent.Err(); err != nil {
		return nil, fmt.Errorf("flowz: group canceled: %w", err)
	}
	if g.canceled.Load() {
		return nil, fmt.Errorf("flowz: group canceled: %w", context.Canceled)
	}

	for i, err := range g.errs {
		if err != nil && !IsCanceled(err) {
			return nil, &UnitError{Index: i, Err: err}
		}
	}

	// A unit surfaced a cancellation on its own, without the group or
	// parent being canceled. Report it as a cancellation outcome rather
	// than silently returning a partial result set.
	for i, err := range g.errs {
		if err != nil {
			return nil, fmt.Errorf("flowz: group canceled: %w", &UnitError{Index: i, Err: err})
		}
	}

	return g.results, nil
}

// Cancel requests cooperative cancellation of every unit that has not
// yet completed. A subsequent Join reports a cancellation outcome.
func (g *Group[T]) Cancel() {
	g.canceled.Store(true)
	g.cancel()
}
