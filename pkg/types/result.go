package types

import "time"

// Result carries the outcome of an asynchronous operation together with
// how long it took.
type Result[T any] struct {
	Value    T
	Error    error
	Duration time.Duration
}

// Success returns true when the operation produced no error.
func (r Result[T]) Success() bool {
	return r.Error == nil
}
