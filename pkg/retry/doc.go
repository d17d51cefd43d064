// Package retry provides retry policies and an executor, tuned for
// resubmitting tasks when the pool's node arena is temporarily exhausted.
//
// Key Features:
//
// 1. Multiple retry policies:
//   - FixedDelayRetry: Fixed delay retry
//   - ExponentialBackoffRetry: Exponential backoff retry
//   - LinearBackoffRetry: Linear backoff retry
//   - CustomRetry: Custom retry policy
//
// 2. Retry executor:
//   - Supports synchronous and asynchronous execution
//   - Context cancellation support
//   - Retry statistics collection
//   - Event notification mechanism
//   - Mockable clock for deterministic tests
//
// 3. Pool integration:
//   - SubmitWithRetry resubmits on transient capacity errors
//   - DefaultRetryCondition retries only capacity exhaustion
//
// Basic usage example:
//
//	// Create retry policy
//	policy := retry.NewExponentialBackoffRetry(3, 100*time.Millisecond)
//
//	// Create retry executor
//	executor := retry.NewRetryExecutor(policy)
//
//	// Execute function with retry
//	result, err := retry.Execute(executor, ctx, func(ctx context.Context) (string, error) {
//		return doSomething()
//	})
//
// Pool integration example:
//
//	p, _ := pool.New(&pool.Config{Workers: 8, MaxNodes: 4096})
//	executor := retry.NewRetryExecutor(retry.NewFixedDelayRetry(5, 10*time.Millisecond))
//
//	err := retry.SubmitWithRetry(executor, ctx, p, task)
//
// Custom retry conditions:
//
//	customCondition := func(err error) bool {
//		return isTemporaryError(err)
//	}
//
//	policy := retry.NewFixedDelayRetry(3, 100*time.Millisecond,
//		retry.WithRetryCondition(customCondition))
//
// Backoff configuration:
//
//	policy := retry.NewExponentialBackoffRetry(3, 100*time.Millisecond,
//		retry.WithMultiplier(1.5),
//		retry.WithMaxDelay(10*time.Second))
//
//	// Enable jitter
//	fixed := retry.NewFixedDelayRetry(3, 100*time.Millisecond,
//		retry.WithJitter(true, 0.1)) // 10% jitter
//
// Event handling:
//
//	handler := retry.NewDefaultEventHandler(logger)
//	executor := retry.NewRetryExecutor(policy,
//		retry.WithEventHandler(handler))
//
// Thread safety:
//
// All public types and methods are thread-safe and can be safely used in
// concurrent environments.
package retry
