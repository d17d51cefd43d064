package pool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/stealpool/pkg/types"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		config      *Config
		expectError bool
	}{
		{
			name:        "nil config should use default",
			config:      nil,
			expectError: false,
		},
		{
			name: "valid config",
			config: &Config{
				Workers:        2,
				LocalQueueSize: 16,
			},
			expectError: false,
		},
		{
			name: "zero workers defaults to GOMAXPROCS",
			config: &Config{
				Workers: 0,
			},
			expectError: false,
		},
		{
			name: "negative local queue size should error",
			config: &Config{
				Workers:        2,
				LocalQueueSize: -1,
			},
			expectError: true,
		},
		{
			name: "negative node chunk size should error",
			config: &Config{
				Workers:       2,
				NodeChunkSize: -8,
			},
			expectError: true,
		},
		{
			name: "negative max nodes should error",
			config: &Config{
				Workers:  2,
				MaxNodes: -1,
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(tt.config)

			if tt.expectError {
				assert.Error(t, err)
				assert.ErrorIs(t, err, types.ErrInvalidConfig)
				assert.Nil(t, p)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, p)
			assert.Greater(t, p.Workers(), 0)
			assert.NoError(t, p.Close())
		})
	}
}

func TestPool_SubmitNilTask(t *testing.T) {
	p, err := New(&Config{Workers: 1})
	require.NoError(t, err)
	defer p.Close()

	assert.ErrorIs(t, p.Submit(nil), types.ErrNilTask)
	assert.ErrorIs(t, p.SubmitFunc(nil), types.ErrNilTask)
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	p, err := New(&Config{Workers: 1})
	require.NoError(t, err)

	p.Shutdown()
	p.Join()

	err = p.Submit(types.NewBasicTask(func(ctx context.Context) error { return nil }))
	assert.ErrorIs(t, err, types.ErrPoolClosed)
}

func TestPool_ShutdownIdempotent(t *testing.T) {
	p, err := New(&Config{Workers: 2})
	require.NoError(t, err)

	p.Shutdown()
	p.Shutdown()
	p.Join()
	assert.NoError(t, p.Close())

	assert.Equal(t, "shutdown", p.Stats().Lifecycle)
	assert.Equal(t, 0, p.Stats().Spawned)
}

func TestPool_BasicThroughput(t *testing.T) {
	const tasks = 10000

	p, err := New(&Config{Workers: 4, LocalQueueSize: 64})
	require.NoError(t, err)

	var counter atomic.Int64
	var wg sync.WaitGroup
	wg.Add(tasks)

	for i := 0; i < tasks; i++ {
		err := p.SubmitFunc(func(ctx context.Context) error {
			counter.Add(1)
			wg.Done()
			return nil
		})
		require.NoError(t, err)
	}

	wg.Wait()
	assert.NoError(t, p.Close())
	assert.Equal(t, int64(tasks), counter.Load())

	stats := p.Stats()
	assert.Equal(t, int64(tasks), stats.TotalProcessed)
	assert.Zero(t, stats.TotalFailed)
}

func TestPool_FIFOSingleWorker(t *testing.T) {
	const tasks = 100

	p, err := New(&Config{Workers: 1, LocalQueueSize: 8})
	require.NoError(t, err)

	var mu sync.Mutex
	order := make([]int, 0, tasks)
	var wg sync.WaitGroup
	wg.Add(tasks)

	for i := 1; i <= tasks; i++ {
		seq := i
		err := p.SubmitFunc(func(ctx context.Context) error {
			mu.Lock()
			order = append(order, seq)
			mu.Unlock()
			wg.Done()
			return nil
		})
		require.NoError(t, err)
	}

	wg.Wait()
	require.NoError(t, p.Close())

	// With one worker and no stealing, injector FIFO order is preserved
	// end to end.
	require.Len(t, order, tasks)
	for i, seq := range order {
		assert.Equal(t, i+1, seq, "task %d executed out of order", seq)
	}
}

func TestPool_NodeExhaustion(t *testing.T) {
	p, err := New(&Config{
		Workers:       1,
		NodeChunkSize: 8,
		MaxNodes:      8,
	})
	require.NoError(t, err)
	defer p.Close()

	// Occupy the only worker so the injector backs up.
	block := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, p.SubmitFunc(func(ctx context.Context) error {
		close(started)
		<-block
		return nil
	}))
	<-started

	// One node is the sentinel; fill the rest, then expect rejection.
	var submitErr error
	for i := 0; i < 16; i++ {
		submitErr = p.SubmitFunc(func(ctx context.Context) error { return nil })
		if submitErr != nil {
			break
		}
	}
	require.Error(t, submitErr)
	assert.ErrorIs(t, submitErr, types.ErrNodesExhausted)
	assert.True(t, types.IsRetryable(submitErr))

	// Unblocking the worker drains the backlog and frees nodes.
	close(block)
	assert.Eventually(t, func() bool {
		return p.QueueLen() == 0
	}, 2*time.Second, 5*time.Millisecond)

	assert.NoError(t, p.SubmitFunc(func(ctx context.Context) error { return nil }))
}

func TestPool_AllWorkersParkWhenIdle(t *testing.T) {
	p, err := New(&Config{Workers: 4})
	require.NoError(t, err)
	defer p.Close()

	var wg sync.WaitGroup
	wg.Add(200)
	for i := 0; i < 200; i++ {
		require.NoError(t, p.SubmitFunc(func(ctx context.Context) error {
			wg.Done()
			return nil
		}))
	}
	wg.Wait()

	// With every queue empty, all workers must park within bounded time
	// instead of spinning.
	assert.Eventually(t, func() bool {
		return p.Stats().Idle == p.Workers()
	}, 2*time.Second, 5*time.Millisecond)
}

func TestPool_StatsSnapshot(t *testing.T) {
	p, err := New(&Config{Workers: 2})
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(10)
	for i := 0; i < 10; i++ {
		require.NoError(t, p.SubmitFunc(func(ctx context.Context) error {
			wg.Done()
			return nil
		}))
	}
	wg.Wait()
	require.NoError(t, p.Close())

	stats := p.Stats()
	assert.Equal(t, 2, stats.Workers)
	assert.Equal(t, int64(10), stats.TotalProcessed)
	assert.Equal(t, 0, stats.QueueDepth)

	workerStats := p.WorkerStats()
	require.Len(t, workerStats, 2)
	var total int64
	for _, ws := range workerStats {
		total += ws.TotalProcessed
		assert.Equal(t, WorkerStopped, ws.State)
	}
	assert.Equal(t, int64(10), total)
}

func TestWorkerState_String(t *testing.T) {
	assert.Equal(t, "searching", WorkerSearching.String())
	assert.Equal(t, "running", WorkerRunning.String())
	assert.Equal(t, "parked", WorkerParked.String())
	assert.Equal(t, "stopped", WorkerStopped.String())
	assert.Equal(t, "unknown", WorkerState(42).String())
}
