// Package flowz provides structured-concurrency primitives for Go:
// task groups that fan out independent computations and join them as a
// single ordered outcome, and cold stream pipelines that compose lazy
// transformation stages with bounded buffering, execution-context
// switching, and bounded-concurrency merging.
//
// The two abstractions are independent and compose at the call site.
// A Group launches a fixed set of units eagerly and Join waits for all
// of them, returning results in launch order:
//
//	g := flowz.Launch(ctx, []flowz.Unit[string]{fetchA, fetchB, fetchC})
//	results, err := g.Join()
//	// results == [a, b, c] regardless of completion order
//
// A Stream is pure composition: nothing runs until Collect, and every
// Collect restarts the emitter from scratch (cold semantics):
//
//	s := flowz.From(flowz.FromSlice(ids))
//	enriched := flowz.TryMap(s, "enrich", lookup)
//	err := enriched.Buffer(64).Collect(ctx, func(u User) error {
//		return store(u)
//	})
//
// Stages before an On call run on the given ExecutionContext; Buffer
// decouples producer from consumer through a bounded FIFO; and
// MergeConcurrently expands each item into a sub-stream with at most
// limit sub-streams live at once.
package flowz

// ExecutionContext is an abstract scheduling domain. It accepts a unit
// of work and runs it under its own policy. A context is a capability,
// not owned by any stream or group; it may be shared freely across
// concurrent pipelines.
//
// Implementations must dispatch asynchronously: pipelines submit
// long-lived boundary loops through Execute, and running one
// synchronously would stall the submitting side. Background and
// WorkerPool both satisfy this.
type ExecutionContext interface {
	// Execute schedules fn to run on this context.
	Execute(fn func())

	// Name returns a descriptive name for the context, useful for debugging.
	Name() string
}

// Background is the default ExecutionContext: every submitted unit of
// work gets its own goroutine.
var Background ExecutionContext = backgroundContext{}

type backgroundContext struct{}

func (backgroundContext) Execute(fn func()) { go fn() }

func (backgroundContext) Name() string { return "background" }

// WorkerPool is an ExecutionContext backed by a fixed set of worker
// goroutines. It bounds how many submitted units of work run at once:
// a unit submitted while all workers are busy waits for a free worker.
//
// Sizing: synchronous stages (Map, Filter, Take, and friends) are
// fused and never occupy a worker. Each Buffer, On, and
// MergeConcurrently boundary running on the pool holds one worker for
// the whole Collect, and MergeConcurrently holds up to limit more for
// live sub-streams. A pool with fewer workers than a pipeline's total
// boundary count stalls that pipeline until another Collect releases
// workers, so size the pool to at least the largest single pipeline's
// requirement when sharing it.
type WorkerPool struct {
	tasks chan func()
	done  chan struct{}
	name  string
}

// NewWorkerPool creates a pool with the given number of workers.
// Workers start immediately. Call Close when the pool is no longer
// needed; work submitted after Close is dropped.
func NewWorkerPool(workers int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}

	p := &WorkerPool{
		tasks: make(chan func()),
		done:  make(chan struct{}),
		name:  "worker-pool",
	}

	for i := 0; i < workers; i++ {
		go func() {
			for {
				select {
				case fn := <-p.tasks:
					fn()
				case <-p.done:
					return
				}
			}
		}()
	}

	return p
}

// WithName sets a custom name for this pool.
func (p *WorkerPool) WithName(name string) *WorkerPool {
	p.name = name
	return p
}

// Execute schedules fn on a pool worker. The caller never blocks: if
// every worker is busy, the handoff moves to a transfer goroutine that
// waits for a free worker, so fn still only runs on pool workers.
func (p *WorkerPool) Execute(fn func()) {
	select {
	case p.tasks <- fn:
	case <-p.done:
	default:
		go func() {
			select {
			case p.tasks <- fn:
			case <-p.done:
			}
		}()
	}
}

// Close stops the pool. Idle workers exit; work already running is
// unaffected. Call Close exactly once.
func (p *WorkerPool) Close() {
	close(p.done)
}

// Name returns the pool's name.
func (p *WorkerPool) Name() string { return p.name }
