// Package types defines core interfaces and types for the stealpool library
package types

import (
	"context"
	"fmt"
	"sync/atomic"
)

// taskIDCounter is the global task ID counter
var taskIDCounter int64

// Task defines a unit of work executed by the pool.
//
// A task is immutable once submitted. Ownership transfers to the pool on
// Submit and the task is executed exactly once by some worker.
type Task interface {
	// Execute executes the task
	Execute(ctx context.Context) error

	// ID returns the task ID (optional, for tracking)
	ID() string
}

// Completable is an optional Task extension. When a submitted task
// implements it, the executing worker invokes Complete exactly once with
// the task's result (nil on success, the error or wrapped panic on
// failure) after the task body returns.
type Completable interface {
	// Complete receives the task result
	Complete(err error)
}

// BasicTask is the basic implementation of the Task interface
type BasicTask struct {
	id         string
	fn         func(ctx context.Context) error
	onComplete func(err error)
}

// NewBasicTask creates a new basic task
func NewBasicTask(fn func(ctx context.Context) error) *BasicTask {
	id := atomic.AddInt64(&taskIDCounter, 1)
	return &BasicTask{
		id: fmt.Sprintf("task-%d", id),
		fn: fn,
	}
}

// NewBasicTaskWithID creates a basic task with custom ID
func NewBasicTaskWithID(id string, fn func(ctx context.Context) error) *BasicTask {
	return &BasicTask{
		id: id,
		fn: fn,
	}
}

// WithOnComplete sets a completion callback and returns the task
func (t *BasicTask) WithOnComplete(fn func(err error)) *BasicTask {
	t.onComplete = fn
	return t
}

// Execute executes the task
func (t *BasicTask) Execute(ctx context.Context) error {
	if t.fn == nil {
		return fmt.Errorf("task %s has no execution function", t.id)
	}
	return t.fn(ctx)
}

// ID returns the task ID
func (t *BasicTask) ID() string {
	return t.id
}

// Complete implements the Completable interface
func (t *BasicTask) Complete(err error) {
	if t.onComplete != nil {
		t.onComplete(err)
	}
}

// ErrorHandler defines an error handling function invoked by workers when a
// task fails. The returned error, if non-nil, is passed to the task's
// completion callback in place of the original.
type ErrorHandler func(error) error
