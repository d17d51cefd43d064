package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskError(t *testing.T) {
	cause := errors.New("boom")
	err := NewTaskError("task-1", 3, cause)

	assert.Equal(t, "task-1", err.TaskID)
	assert.Equal(t, 3, err.WorkerID)
	assert.Contains(t, err.Error(), "task-1")
	assert.Contains(t, err.Error(), "worker 3")
	assert.Contains(t, err.Error(), "boom")
}

func TestTaskError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := NewTaskError("task-2", 0, cause)

	assert.Equal(t, cause, errors.Unwrap(err))
	assert.True(t, errors.Is(err, cause))
}

func TestTaskError_WrapsSentinels(t *testing.T) {
	wrapped := NewTaskError("task-3", 1, fmt.Errorf("submit: %w", ErrNodesExhausted))
	assert.True(t, errors.Is(wrapped, ErrNodesExhausted))
	assert.False(t, errors.Is(wrapped, ErrPoolClosed))
}

func TestTaskError_WithStack(t *testing.T) {
	err := NewTaskError("task-4", 2, errors.New("panic: oops")).WithStack("goroutine 1 [running]")
	require.NotEmpty(t, err.Stack)
	assert.Contains(t, err.Stack, "goroutine")
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{
			name:      "node exhaustion is retryable",
			err:       ErrNodesExhausted,
			retryable: true,
		},
		{
			name:      "wrapped node exhaustion is retryable",
			err:       fmt.Errorf("submit failed: %w", ErrNodesExhausted),
			retryable: true,
		},
		{
			name:      "closed pool is terminal",
			err:       ErrPoolClosed,
			retryable: false,
		},
		{
			name:      "nil task is terminal",
			err:       ErrNilTask,
			retryable: false,
		},
		{
			name:      "arbitrary error is terminal",
			err:       errors.New("something else"),
			retryable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
		})
	}
}
