package pool

import (
	"fmt"
	"runtime"

	"github.com/jzx17/stealpool/internal/queue"
	"github.com/jzx17/stealpool/pkg/types"
)

// Config defines configuration for the work-stealing pool
type Config struct {
	// Workers is the number of worker goroutines. Defaults to
	// runtime.GOMAXPROCS(0).
	Workers int

	// LocalQueueSize is the per-worker queue capacity, rounded up to a
	// power of two. It bounds how many tasks an injector drain moves
	// into one worker.
	LocalQueueSize int

	// NodeChunkSize is the injector's node-pool growth increment.
	NodeChunkSize int

	// MaxNodes caps the injector's total node allocation; Submit returns
	// types.ErrNodesExhausted once the cap is reached. 0 means unbounded.
	MaxNodes int

	// PinWorkers locks each worker goroutine to an OS thread.
	PinWorkers bool

	// Clock for time operations (optional, defaults to real clock)
	Clock types.Clock

	// Observer receives task lifecycle events on the worker goroutine
	// (optional; must be cheap and non-blocking)
	Observer types.Observer

	// ErrorHandler is invoked with each task failure before the task's
	// completion callback; a non-nil return value replaces the error
	// handed to the callback (optional)
	ErrorHandler types.ErrorHandler
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Workers:        runtime.GOMAXPROCS(0),
		LocalQueueSize: 256,
		NodeChunkSize:  queue.DefaultChunkSize,
		Clock:          types.NewRealClock(),
	}
}

// validate checks configuration and fills in defaults
func (c *Config) validate() error {
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Workers > maxWorkers {
		return fmt.Errorf("%w: worker count %d exceeds maximum %d",
			types.ErrInvalidConfig, c.Workers, maxWorkers)
	}
	if c.LocalQueueSize == 0 {
		c.LocalQueueSize = 256
	}
	if c.LocalQueueSize < 0 {
		return fmt.Errorf("%w: local queue size must be positive, got %d",
			types.ErrInvalidConfig, c.LocalQueueSize)
	}
	if c.NodeChunkSize == 0 {
		c.NodeChunkSize = queue.DefaultChunkSize
	}
	if c.NodeChunkSize < 0 {
		return fmt.Errorf("%w: node chunk size must be positive, got %d",
			types.ErrInvalidConfig, c.NodeChunkSize)
	}
	if c.MaxNodes < 0 {
		return fmt.Errorf("%w: max nodes must be non-negative, got %d",
			types.ErrInvalidConfig, c.MaxNodes)
	}
	if c.Clock == nil {
		c.Clock = types.NewRealClock()
	}
	return nil
}

// maxWorkers bounds the worker count to what the spawned-count bit field
// of the scheduler state word can represent.
const maxWorkers = countMask
