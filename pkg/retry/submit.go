package retry

import (
	"context"

	"github.com/jzx17/stealpool/pkg/types"
)

// Submitter accepts tasks for execution. *pool.Pool satisfies it.
type Submitter interface {
	Submit(task types.Task) error
}

// SubmitWithRetry submits a task through the executor's retry policy.
// Submission failures caused by capacity exhaustion are retried with the
// policy's delay schedule; permanent errors such as a closed pool fail
// immediately.
func SubmitWithRetry(r *RetryExecutor, ctx context.Context, s Submitter, task types.Task) error {
	_, err := Execute(r, ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.Submit(task)
	})
	return err
}

// SubmitFuncWithRetry wraps fn in a task and submits it with retries.
func SubmitFuncWithRetry(r *RetryExecutor, ctx context.Context, s Submitter, fn func(ctx context.Context) error) error {
	return SubmitWithRetry(r, ctx, s, types.NewBasicTask(fn))
}
