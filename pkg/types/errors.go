// Package types defines error types
package types

import (
	"errors"
	"fmt"
)

// Predefined errors
var (
	// ErrPoolClosed indicates the pool has been shut down; submissions are
	// rejected, never silently accepted
	ErrPoolClosed = errors.New("pool is shutting down")

	// ErrNodesExhausted indicates the node pool reached its configured
	// capacity and could not grow
	ErrNodesExhausted = errors.New("queue nodes exhausted")

	// ErrNilTask indicates a nil task was submitted
	ErrNilTask = errors.New("task cannot be nil")

	// ErrInvalidConfig indicates an invalid pool configuration
	ErrInvalidConfig = errors.New("invalid pool configuration")
)

// TaskError represents a task execution failure. It is delivered to the
// task's completion callback and to observers; it never propagates into
// the worker loop's control flow.
type TaskError struct {
	// TaskID is the ID of the failed task
	TaskID string

	// WorkerID is the worker that executed the task
	WorkerID int

	// Cause is the underlying error
	Cause error

	// Stack holds the goroutine stack trace when the failure was a panic
	Stack string
}

// Error implements the error interface
func (e *TaskError) Error() string {
	return fmt.Sprintf("task %s failed on worker %d: %v", e.TaskID, e.WorkerID, e.Cause)
}

// Unwrap returns the underlying error
func (e *TaskError) Unwrap() error {
	return e.Cause
}

// Is checks if the error is a specific error
func (e *TaskError) Is(target error) bool {
	return errors.Is(e.Cause, target)
}

// NewTaskError creates a new task error
func NewTaskError(taskID string, workerID int, cause error) *TaskError {
	return &TaskError{
		TaskID:   taskID,
		WorkerID: workerID,
		Cause:    cause,
	}
}

// WithStack attaches a stack trace to the error
func (e *TaskError) WithStack(stack string) *TaskError {
	e.Stack = stack
	return e
}

// IsRetryable reports whether a submission error is worth retrying.
// Node exhaustion is transient (nodes free up as workers drain queues);
// a closed pool is terminal.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrNodesExhausted)
}
