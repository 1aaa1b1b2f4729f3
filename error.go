package flowz

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Usage errors reported for misuse of single-use handles. These signal
// programmer error, not runtime conditions to recover from.
var (
	// ErrAlreadyJoined is returned by Group.Join after the group has
	// already been joined. A Group is single-use.
	ErrAlreadyJoined = errors.New("flowz: group already joined")

	// ErrCollectRunning is returned by Stream.Collect when a Collect on
	// the same Stream value is still in flight. Sequential Collect calls
	// are allowed and restart the emitter (cold semantics).
	ErrCollectRunning = errors.New("flowz: collect already running")

	// ErrQueueClosed is returned by BoundedQueue.Push after Close.
	ErrQueueClosed = errors.New("flowz: push on closed queue")
)

// StageError represents an error raised while a pipeline stage was
// processing an item. It captures both the item that caused the error
// and the error itself, enabling better debugging and error handling
// strategies downstream.
//
//nolint:govet // fieldalignment: struct layout optimized for readability over memory
type StageError[T any] struct {
	// Item is the original item that caused the processing error.
	Item T

	// Err is the underlying error that occurred during processing.
	Err error

	// StageName identifies which stage generated the error.
	StageName string

	// Timestamp records when the error occurred.
	Timestamp time.Time
}

// NewStageError creates a new StageError with the current timestamp.
func NewStageError[T any](item T, err error, stageName string) *StageError[T] {
	return &StageError[T]{
		Item:      item,
		Err:       err,
		StageName: stageName,
		Timestamp: time.Now(),
	}
}

// String returns a human-readable representation of the error.
func (se *StageError[T]) String() string {
	return fmt.Sprintf("StageError[%s]: %v (item: %v, time: %s)",
		se.StageName, se.Err, se.Item, se.Timestamp.Format(time.RFC3339))
}

// Unwrap returns the underlying error, enabling error wrapping chains.
func (se *StageError[T]) Unwrap() error {
	return se.Err
}

// Error implements the error interface.
func (se *StageError[T]) Error() string {
	return se.String()
}

// UnitError wraps the failure of a single work unit together with its
// launch index, so callers can attribute a group failure to a specific
// position in the launched sequence.
type UnitError struct {
	Err   error
	Index int
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("flowz: unit %d failed: %v", e.Index, e.Err)
}

func (e *UnitError) Unwrap() error {
	return e.Err
}

// UnitIndexOf extracts the launch index from the first *UnitError in
// err's chain. Returns -1 and false if none is found.
func UnitIndexOf(err error) (int, bool) {
	var ue *UnitError
	if errors.As(err, &ue) {
		return ue.Index, true
	}
	return -1, false
}

// IsCanceled reports whether err represents a cancellation outcome
// rather than an ordinary failure. Callers use this to avoid treating
// cancellation as an error to retry.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
