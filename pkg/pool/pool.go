package pool

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/jzx17/stealpool/internal/queue"
	"github.com/jzx17/stealpool/pkg/types"
)

// Pool is a fixed-size work-stealing task pool. Tasks enter through the
// global injector queue; each worker drains its own local queue first,
// then the injector, then steals from siblings. Submission is wait-free
// apart from the injector's rare node-chunk allocation.
type Pool struct {
	config   *Config
	state    schedState
	injector *queue.MPSC[types.Task]
	workers  []*worker

	// wakeCh is the wake event: at most one token is in flight, placed
	// by a submitter that won the pending->signaled transition and
	// consumed by one parked worker (wake-one, never broadcast).
	wakeCh chan struct{}
	stopCh chan struct{}

	// drainBusy is the injector's consumer ticket; the worker holding it
	// is the queue's single consumer for that drain.
	drainBusy atomic.Bool

	// submitters counts Submit calls between their lifecycle check and the
	// end of the push, so Join can tell when no push is still in flight.
	submitters atomic.Int64

	wg           sync.WaitGroup
	shutdownOnce sync.Once
	sweepOnce    sync.Once
	baseCtx      context.Context
}

// New creates a pool and spawns its workers. A nil config uses defaults.
func New(config *Config) (*Pool, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.validate(); err != nil {
		return nil, err
	}

	p := &Pool{
		config:   config,
		injector: queue.NewMPSC[types.Task](config.NodeChunkSize, config.MaxNodes),
		wakeCh:   make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
	}
	p.baseCtx = types.WithClock(context.Background(), config.Clock)

	p.workers = make([]*worker, config.Workers)
	for i := range p.workers {
		p.workers[i] = newWorker(i, p)
	}
	for _, w := range p.workers {
		p.wg.Add(1)
		p.state.incSpawned()
		go w.run(p.baseCtx)
	}
	return p, nil
}

// Submit enqueues a task for execution. It never blocks the caller.
//
// Submission failures are always explicit: types.ErrPoolClosed after
// Shutdown, types.ErrNodesExhausted (wrapped) when the injector's node
// cap is reached. A task whose submission failed is never executed, and
// an accepted task is never dropped: the workers drain it during
// shutdown, or Join completes it with types.ErrPoolClosed.
func (p *Pool) Submit(task types.Task) error {
	if task == nil {
		return types.ErrNilTask
	}

	p.submitters.Add(1)
	defer p.submitters.Add(-1)

	if p.state.lifecycle() == lifecycleShutdown {
		return types.ErrPoolClosed
	}

	if err := p.injector.Push(task); err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	p.notify()
	return nil
}

// SubmitFunc wraps a function in a task and submits it.
func (p *Pool) SubmitFunc(fn func(ctx context.Context) error) error {
	if fn == nil {
		return types.ErrNilTask
	}
	return p.Submit(types.NewBasicTask(fn))
}

// notify wakes one parked worker if there is one. The pending->signaled
// transition guarantees at most one wake in flight, so bursty submitters
// do not stampede the parked set.
func (p *Pool) notify() {
	if p.state.idle() == 0 {
		return
	}
	if !p.state.transition(lifecyclePending, lifecycleSignaled) {
		return
	}
	select {
	case p.wakeCh <- struct{}{}:
	default:
	}
}

// Shutdown moves the pool to its terminal state and wakes every parked
// worker. New submissions are refused from this point on; tasks already
// accepted are drained to completion by the workers before they exit.
// Idempotent.
func (p *Pool) Shutdown() {
	p.shutdownOnce.Do(func() {
		p.state.shutdown()
		close(p.stopCh)
	})
}

// Join blocks until all workers have exited and every accepted task has
// been resolved. Call after Shutdown.
func (p *Pool) Join() {
	p.wg.Wait()
	p.sweepOnce.Do(p.sweepInjector)
}

// sweepInjector resolves tasks whose submission raced with Shutdown so
// closely that the push landed after the last worker's final search.
// The workers are gone by now, so this goroutine is the injector's sole
// consumer; such tasks are not executed, but their completion callback
// fires with ErrPoolClosed so the outcome is never silent.
func (p *Pool) sweepInjector() {
	for {
		task, ok := p.injector.Pop()
		if ok {
			if c, isC := task.(types.Completable); isC {
				c.Complete(types.ErrPoolClosed)
			}
			continue
		}
		if p.submitters.Load() == 0 && p.injector.Empty() {
			return
		}
		// A push is still in flight; its producer is live, so yield
		// until it becomes visible or the submitter count drops.
		runtime.Gosched()
	}
}

// Close shuts the pool down and waits for the workers to exit.
func (p *Pool) Close() error {
	p.Shutdown()
	p.Join()
	return nil
}

// Workers returns the configured worker count.
func (p *Pool) Workers() int {
	return p.config.Workers
}

// QueueLen returns the number of tasks waiting in the global injector.
func (p *Pool) QueueLen() int {
	return p.injector.Len()
}

// PoolStats defines pool-wide statistics
type PoolStats struct {
	// Workers is the configured worker count
	Workers int

	// Spawned is the number of workers currently running their loop
	Spawned int

	// Idle is the number of parked workers
	Idle int

	// Lifecycle is the coarse pool lifecycle ("pending", "signaled",
	// "waking", or "shutdown")
	Lifecycle string

	// QueueDepth is the injector backlog
	QueueDepth int

	// TotalProcessed is the number of successfully executed tasks
	TotalProcessed int64

	// TotalFailed is the number of failed tasks
	TotalFailed int64

	// TotalStolen is the number of tasks moved between workers by steals
	TotalStolen int64

	// TotalParks counts worker park transitions
	TotalParks int64
}

// Stats returns a snapshot of pool-wide statistics.
func (p *Pool) Stats() PoolStats {
	idle, spawned, lc := p.state.snapshot()
	stats := PoolStats{
		Workers:    p.config.Workers,
		Spawned:    spawned,
		Idle:       idle,
		Lifecycle:  lc.String(),
		QueueDepth: p.injector.Len(),
	}
	for _, w := range p.workers {
		ws := w.Stats()
		stats.TotalProcessed += ws.TotalProcessed
		stats.TotalFailed += ws.TotalFailed
		stats.TotalStolen += ws.TotalStolen
		stats.TotalParks += ws.TotalParks
	}
	return stats
}

// WorkerStats returns per-worker statistics snapshots.
func (p *Pool) WorkerStats() []WorkerStats {
	stats := make([]WorkerStats, len(p.workers))
	for i, w := range p.workers {
		stats[i] = w.Stats()
	}
	return stats
}
