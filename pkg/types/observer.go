// Package types defines instrumentation hooks
package types

// TaskEvent identifies a task lifecycle event
type TaskEvent int

const (
	// TaskStarted is emitted when a worker begins executing a task
	TaskStarted TaskEvent = iota
	// TaskCompleted is emitted when a task returns without error
	TaskCompleted
	// TaskFailed is emitted when a task returns an error or panics
	TaskFailed
)

// String returns the string representation of TaskEvent
func (e TaskEvent) String() string {
	switch e {
	case TaskStarted:
		return "started"
	case TaskCompleted:
		return "completed"
	case TaskFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Observer receives task lifecycle events. Callbacks run synchronously on
// the executing worker's goroutine and must be cheap and non-blocking.
type Observer interface {
	// OnTaskEvent is invoked for every task lifecycle transition. err is
	// non-nil only for TaskFailed.
	OnTaskEvent(event TaskEvent, workerID int, err error)
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(event TaskEvent, workerID int, err error)

// OnTaskEvent implements the Observer interface
func (f ObserverFunc) OnTaskEvent(event TaskEvent, workerID int, err error) {
	f(event, workerID, err)
}
