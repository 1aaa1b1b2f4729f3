package flowz

// Result represents either a successful value or an error flowing
// through a stream pipeline. Carrying successes and failures on a
// single channel eliminates dual-channel error handling between
// stages; the terminal Collect unwraps the first error it sees.
type Result[T any] struct {
	value T
	err   *StageError[T]
}

// NewSuccess creates a Result containing a successful value.
func NewSuccess[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// NewError creates a Result containing an error.
func NewError[T any](item T, err error, stageName string) Result[T] {
	return Result[T]{err: NewStageError(item, err, stageName)}
}

// IsError returns true if this Result contains an error.
func (r Result[T]) IsError() bool {
	return r.err != nil
}

// IsSuccess returns true if this Result contains a successful value.
func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}

// Value returns the successful value.
// Panics if called on a Result containing an error - always check IsSuccess() first.
func (r Result[T]) Value() T {
	if r.err != nil {
		panic("called Value() on Result containing an error")
	}
	return r.value
}

// Error returns the StageError.
// Returns nil if this Result contains a successful value.
func (r Result[T]) Error() *StageError[T] {
	return r.err
}

// ValueOr returns the successful value if present, otherwise returns the fallback.
func (r Result[T]) ValueOr(fallback T) T {
	if r.err != nil {
		return fallback
	}
	return r.value
}

// Map applies a function to the value if this Result is successful.
// If this Result contains an error, returns the error unchanged.
func (r Result[T]) Map(fn func(T) T) Result[T] {
	if r.err != nil {
		return r
	}
	return NewSuccess(fn(r.value))
}

// errAs re-types a stage error so it can cross a stage that changes
// the item type. The original item cannot travel across the type
// boundary; the cause, stage name, and timestamp are preserved.
func errAs[In, Out any](se *StageError[In]) Result[Out] {
	var zero Out
	return Result[Out]{err: &StageError[Out]{
		Item:      zero,
		Err:       se.Err,
		StageName: se.StageName,
		Timestamp: se.Timestamp,
	}}
}
