package flowz

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestQueueFIFO(t *testing.T) {
	ctx := context.Background()
	q := NewBoundedQueue[int](10)

	for i := 0; i < 5; i++ {
		if err := q.Push(ctx, i); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}

	for i := 0; i < 5; i++ {
		v, ok, err := q.Pop(ctx)
		if err != nil || !ok {
			t.Fatalf("pop %d: ok=%v err=%v", i, ok, err)
		}
		if v != i {
			t.Errorf("pop %d = %d, want %d", i, v, i)
		}
	}
}

func TestQueuePushBlocksWhenFull(t *testing.T) {
	ctx := context.Background()
	q := NewBoundedQueue[int](2)

	if err := q.Push(ctx, 1); err != nil {
		t.Fatal(err)
	}
	if err := q.Push(ctx, 2); err != nil {
		t.Fatal(err)
	}

	pushed := make(chan struct{})
	go func() {
		//nolint:errcheck // unblocked by the Pop below
		q.Push(ctx, 3)
		close(pushed)
	}()

	select {
	case <-pushed:
		t.Fatal("push should block on a full queue")
	case <-time.After(20 * time.Millisecond):
	}

	if _, _, err := q.Pop(ctx); err != nil {
		t.Fatal(err)
	}

	select {
	case <-pushed:
	case <-time.After(time.Second):
		t.Fatal("push did not resume after a pop freed capacity")
	}
}

func TestQueuePopBlocksWhenEmpty(t *testing.T) {
	ctx := context.Background()
	q := NewBoundedQueue[string](1)

	popped := make(chan string, 1)
	go func() {
		v, ok, err := q.Pop(ctx)
		if err != nil || !ok {
			t.Errorf("pop: ok=%v err=%v", ok, err)
		}
		popped <- v
	}()

	select {
	case v := <-popped:
		t.Fatalf("pop returned %q on an empty queue", v)
	case <-time.After(20 * time.Millisecond):
	}

	if err := q.Push(ctx, "hello"); err != nil {
		t.Fatal(err)
	}
	if v := <-popped; v != "hello" {
		t.Errorf("expected %q, got %q", "hello", v)
	}
}

func TestQueueCloseIsIdempotent(t *testing.T) {
	q := NewBoundedQueue[int](1)
	q.Close()
	q.Close()
	q.Close()

	if q.State() != QueueClosed {
		t.Errorf("expected closed, got %v", q.State())
	}
}

func TestQueuePushAfterClose(t *testing.T) {
	ctx := context.Background()
	q := NewBoundedQueue[int](1)
	q.Close()

	if err := q.Push(ctx, 1); !errors.Is(err, ErrQueueClosed) {
		t.Errorf("expected ErrQueueClosed, got %v", err)
	}
}

func TestQueueDrainsAfterClose(t *testing.T) {
	ctx := context.Background()
	q := NewBoundedQueue[int](3)

	for i := 0; i < 3; i++ {
		if err := q.Push(ctx, i); err != nil {
			t.Fatal(err)
		}
	}
	q.Close()

	if q.State() != QueueDraining {
		t.Errorf("expected draining, got %v", q.State())
	}

	for i := 0; i < 3; i++ {
		v, ok, err := q.Pop(ctx)
		if err != nil || !ok {
			t.Fatalf("pop %d after close: ok=%v err=%v", i, ok, err)
		}
		if v != i {
			t.Errorf("pop %d = %d, want %d", i, v, i)
		}
	}

	// Drained: end-of-stream, terminal state.
	if _, ok, err := q.Pop(ctx); ok || err != nil {
		t.Errorf("expected end-of-stream, got ok=%v err=%v", ok, err)
	}
	if q.State() != QueueClosed {
		t.Errorf("expected closed, got %v", q.State())
	}
}

func TestQueueStateTransitions(t *testing.T) {
	ctx := context.Background()
	q := NewBoundedQueue[int](1)

	if q.State() != QueueOpen {
		t.Errorf("new queue: expected open, got %v", q.State())
	}
	if err := q.Push(ctx, 1); err != nil {
		t.Fatal(err)
	}
	q.Close()
	if q.State() != QueueDraining {
		t.Errorf("closed with backlog: expected draining, got %v", q.State())
	}
	if _, _, err := q.Pop(ctx); err != nil {
		t.Fatal(err)
	}
	if q.State() != QueueClosed {
		t.Errorf("drained: expected closed, got %v", q.State())
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	ctx := context.Background()
	q := NewBoundedQueue[int](4)

	const producers = 8
	const perProducer = 50

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				if err := q.Push(ctx, i); err != nil {
					t.Errorf("push: %v", err)
					return
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		q.Close()
	}()

	count := 0
	for {
		_, ok, err := q.Pop(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		count++
	}
	if count != producers*perProducer {
		t.Errorf("expected %d items, got %d", producers*perProducer, count)
	}
}

func TestQueueConcurrentProducersDuringClose(t *testing.T) {
	ctx := context.Background()
	q := NewBoundedQueue[int](2)

	// Producers race Close; every Push must return either nil or
	// ErrQueueClosed, never panic.
	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				if err := q.Push(ctx, i); err != nil {
					if !errors.Is(err, ErrQueueClosed) {
						t.Errorf("unexpected push error: %v", err)
					}
					return
				}
			}
		}()
	}

	go func() {
		for {
			if _, ok, _ := q.Pop(ctx); !ok {
				return
			}
		}
	}()

	time.Sleep(5 * time.Millisecond)
	q.Close()
	wg.Wait()
}

func TestQueuePushContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := NewBoundedQueue[int](1)

	if err := q.Push(ctx, 1); err != nil {
		t.Fatal(err)
	}

	errs := make(chan error, 1)
	go func() {
		errs <- q.Push(ctx, 2)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	if err := <-errs; !IsCanceled(err) {
		t.Errorf("expected cancellation, got %v", err)
	}
}

func TestQueuePopContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	q := NewBoundedQueue[int](1)

	errs := make(chan error, 1)
	go func() {
		_, _, err := q.Pop(ctx)
		errs <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	if err := <-errs; !IsCanceled(err) {
		t.Errorf("expected cancellation, got %v", err)
	}
}
