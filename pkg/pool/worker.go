package pool

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/jzx17/stealpool/internal/queue"
	"github.com/jzx17/stealpool/pkg/types"
)

// WorkerState defines the state of a worker
type WorkerState int32

const (
	// WorkerSearching means the worker is looking for a task
	WorkerSearching WorkerState = iota
	// WorkerRunning means the worker is executing a task
	WorkerRunning
	// WorkerParked means the worker is blocked awaiting a wake signal
	WorkerParked
	// WorkerStopped means the worker has exited its loop
	WorkerStopped
)

// String returns the string representation of WorkerState
func (ws WorkerState) String() string {
	switch ws {
	case WorkerSearching:
		return "searching"
	case WorkerRunning:
		return "running"
	case WorkerParked:
		return "parked"
	case WorkerStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// maxTransientSpins bounds how long an injector drain waits for a
// producer to finish linking a half-pushed node.
const maxTransientSpins = 128

// worker is a single pool goroutine with its own stealable queue.
type worker struct {
	id    int
	pool  *Pool
	local *queue.Ring[types.Task]
	state int32 // atomic WorkerState

	// cursor rotates the steal starting point so workers do not herd on
	// the same victim. Owner-only.
	cursor int

	// drainBuf is scratch space for injector drains. Owner-only.
	drainBuf []types.Task

	// statistics
	totalProcessed int64
	totalFailed    int64
	totalStolen    int64
	totalParks     int64
	lastTaskTime   int64 // Unix nanosecond timestamp
}

// newWorker creates a worker with its local queue.
func newWorker(id int, p *Pool) *worker {
	return &worker{
		id:     id,
		pool:   p,
		local:  queue.NewRing[types.Task](p.config.LocalQueueSize),
		cursor: (id + 1) % p.config.Workers,
	}
}

// run is the worker's control loop: search, execute, park, repeat, until
// the pool shuts down. Shutdown refuses new submissions only: every task
// already accepted is driven to completion, so a worker exits only after
// a search that started with shutdown observed came back empty.
func (w *worker) run(ctx context.Context) {
	defer w.pool.wg.Done()
	defer w.pool.state.decSpawned()
	defer w.setState(WorkerStopped)

	if w.pool.config.PinWorkers {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
	}

	for {
		// The order matters: observing shutdown before the search
		// guarantees the search sees every task accepted before the
		// lifecycle flipped.
		draining := w.pool.state.lifecycle() == lifecycleShutdown

		task, ok := w.findTask()

		// If this worker held the wake token, release it so submitters
		// can signal again.
		w.pool.state.transition(lifecycleWaking, lifecyclePending)

		if ok {
			w.execute(ctx, task)
			continue
		}
		if draining {
			return
		}
		if !w.park() {
			// Stop signal: loop once more so the queues drain before
			// this worker exits.
			continue
		}
	}
}

// findTask implements the dequeue priority order: own local queue first,
// then a batched drain of the global injector, then stealing from
// siblings.
func (w *worker) findTask() (types.Task, bool) {
	w.setState(WorkerSearching)

	if task, ok := w.local.PopOwner(); ok {
		return task, true
	}
	if task, ok := w.drainInjector(); ok {
		return task, true
	}
	if task, ok := w.steal(); ok {
		return task, true
	}
	return nil, false
}

// drainInjector moves a batch of tasks from the global injector into the
// local queue and returns the first of them. The injector has one
// consumer at a time; workers rotate through the role by winning the
// drain ticket.
func (w *worker) drainInjector() (types.Task, bool) {
	p := w.pool
	if !p.drainBusy.CompareAndSwap(false, true) {
		return nil, false
	}

	limit := w.local.Cap()/2 + 1
	if free := w.local.Cap() - w.local.Len() + 1; limit > free {
		limit = free
	}

	buf := w.drainBuf[:0]
	spins := 0
	for len(buf) < limit {
		task, ok := p.injector.Pop()
		if !ok {
			if p.injector.Empty() {
				break
			}
			// A producer has advanced the head but not yet linked its
			// node; the task is not consumable yet.
			spins++
			if spins > maxTransientSpins {
				break
			}
			runtime.Gosched()
			continue
		}
		spins = 0
		buf = append(buf, task)
	}
	p.drainBusy.Store(false)

	if len(buf) == 0 {
		w.drainBuf = buf
		return nil, false
	}

	// Replay the batch in reverse so the owner's LIFO pops hand tasks
	// out in injector order.
	for i := len(buf) - 1; i >= 1; i-- {
		w.local.PushOwner(buf[i])
	}
	first := buf[0]
	for i := range buf {
		buf[i] = nil
	}
	w.drainBuf = buf[:0]

	// Keep the wake chain alive while queued work remains.
	if !p.injector.Empty() {
		p.notify()
	}
	return first, true
}

// steal tries each sibling once, starting from the rotating cursor.
func (w *worker) steal() (types.Task, bool) {
	p := w.pool
	n := len(p.workers)
	if n <= 1 {
		return nil, false
	}

	start := w.cursor
	for i := 0; i < n; i++ {
		victim := (start + i) % n
		if victim == w.id {
			continue
		}
		if task, ok := p.workers[victim].local.Steal(); ok {
			w.cursor = (victim + 1) % n
			atomic.AddInt64(&w.totalStolen, 1)
			return task, true
		}
	}
	w.cursor = (start + 1) % n
	return nil, false
}

// park registers the worker as idle and blocks on the wake event. It
// returns false when the pool is shutting down. A woken worker that
// finds no work simply parks again on the next loop iteration.
func (w *worker) park() bool {
	p := w.pool
	p.state.incIdle()
	w.setState(WorkerParked)
	atomic.AddInt64(&w.totalParks, 1)

	// A submit that raced with our registration saw idle == 0 and sent
	// no signal; re-check the injector before sleeping.
	if !p.injector.Empty() {
		p.state.decIdle()
		runtime.Gosched()
		return true
	}

	select {
	case <-p.wakeCh:
		p.state.decIdle()
		// Claim the wake token; it is released after the next search.
		p.state.transition(lifecycleSignaled, lifecycleWaking)
		return true
	case <-p.stopCh:
		p.state.decIdle()
		return false
	}
}

// execute runs one task and reports its outcome to the observer, the
// error handler, and the task's completion callback. Task errors and
// panics never escape into the worker loop.
func (w *worker) execute(ctx context.Context, task types.Task) {
	w.setState(WorkerRunning)
	p := w.pool

	if p.config.Observer != nil {
		p.config.Observer.OnTaskEvent(types.TaskStarted, w.id, nil)
	}
	atomic.StoreInt64(&w.lastTaskTime, p.config.Clock.Now().UnixNano())

	err := w.runTask(ctx, task)

	if err != nil {
		atomic.AddInt64(&w.totalFailed, 1)
		if p.config.ErrorHandler != nil {
			if replaced := p.config.ErrorHandler(err); replaced != nil {
				err = replaced
			}
		}
		if p.config.Observer != nil {
			p.config.Observer.OnTaskEvent(types.TaskFailed, w.id, err)
		}
	} else {
		atomic.AddInt64(&w.totalProcessed, 1)
		if p.config.Observer != nil {
			p.config.Observer.OnTaskEvent(types.TaskCompleted, w.id, nil)
		}
	}

	if c, ok := task.(types.Completable); ok {
		c.Complete(err)
	}
}

// runTask executes the task body with panic recovery.
func (w *worker) runTask(ctx context.Context, task types.Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			var buf [4096]byte
			n := runtime.Stack(buf[:], false)

			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("panic: %v", r)
			}
			err = types.NewTaskError(task.ID(), w.id, cause).
				WithStack(string(buf[:n]))
		}
	}()

	return task.Execute(ctx)
}

func (w *worker) setState(state WorkerState) {
	atomic.StoreInt32(&w.state, int32(state))
}

// State returns the current worker state.
func (w *worker) State() WorkerState {
	return WorkerState(atomic.LoadInt32(&w.state))
}

// Stats gets worker statistics
func (w *worker) Stats() WorkerStats {
	return WorkerStats{
		ID:             w.id,
		State:          w.State(),
		TotalProcessed: atomic.LoadInt64(&w.totalProcessed),
		TotalFailed:    atomic.LoadInt64(&w.totalFailed),
		TotalStolen:    atomic.LoadInt64(&w.totalStolen),
		TotalParks:     atomic.LoadInt64(&w.totalParks),
		LastTaskTime:   time.Unix(0, atomic.LoadInt64(&w.lastTaskTime)),
	}
}

// WorkerStats defines worker statistics
type WorkerStats struct {
	ID             int
	State          WorkerState
	TotalProcessed int64
	TotalFailed    int64
	TotalStolen    int64
	TotalParks     int64
	LastTaskTime   time.Time
}
