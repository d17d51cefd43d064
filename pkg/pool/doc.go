/*
Package pool provides a fixed-size work-stealing task pool built on
lock-free queues.

# Overview

The pool executes large numbers of independent, short-lived tasks across
a fixed set of worker goroutines with:
- No lock on the hot submission or dequeue path
- Balanced load via work stealing
- Queue nodes recycled through an atomic node pool instead of per-task
  heap allocation

# Architecture

Tasks submitted from outside the pool enter a global injector queue, a
multi-producer/single-consumer lock-free list. Each worker owns a bounded
local ring it works in LIFO order; sibling workers steal the oldest
entries from it in FIFO order. The dequeue priority of every worker is:

 1. Pop the own local queue.
 2. Drain a batch from the global injector into the local queue. Workers
    rotate through the injector's single-consumer role by winning an
    atomic drain ticket; the batch is replayed so injector FIFO order is
    preserved for the owner's pops.
 3. Steal from sibling local queues, starting from a per-worker rotating
    cursor so idle workers fan out over victims.
 4. Park: register as idle in the scheduler state word and block on the
    wake event.

A submitter that observes an idle worker wakes exactly one of them
(wake-one, never broadcast). Spurious wakes are tolerated; a woken worker
that finds nothing re-parks.

Idle and spawned counts plus the pool lifecycle live in one packed atomic
word, so submitters read a consistent snapshot with a single load and
never take a lock to decide whether to signal.

# Ordering

Tasks submitted by one goroutine are executed in submission order as long
as they flow through the injector without intervening steals; there is no
ordering across submitters or once tasks have been stolen. Local queues
are LIFO for their owner (cache locality) and FIFO for stealers
(fairness).

# Shutdown

Shutdown flips the lifecycle to its terminal state and wakes all parked
workers. Only new submissions are refused: every task accepted before the
flip is drained to completion, including its completion callback, and a
worker exits only once a search started after observing shutdown finds
the queues empty. Join waits for the workers, then resolves the one
remaining race: a submission that landed so close to Shutdown that no
worker could see it is completed with ErrPoolClosed instead of running.
Either way, by the time Join returns every accepted task has been
executed or had its callback invoked; nothing is dropped silently.

# Errors

Submission errors are synchronous and explicit: types.ErrPoolClosed after
shutdown and types.ErrNodesExhausted when the injector's configurable
node cap is reached. Task errors and panics are contained by the worker,
wrapped (panics as *types.TaskError with the stack), and delivered to the
task's completion callback and the configured observer; nothing a task
does can take down a worker or the pool.

# Usage

	p, err := pool.New(&pool.Config{Workers: 4})
	if err != nil {
		log.Fatal(err)
	}
	defer p.Close()

	task := types.NewBasicTask(func(ctx context.Context) error {
		// Execute work
		return nil
	}).WithOnComplete(func(err error) {
		// Runs on the worker after the task finishes
	})

	if err := p.Submit(task); err != nil {
		log.Printf("submit failed: %v", err)
	}

The pool does not cancel running tasks; a task that must be interruptible
watches its own context or flag. Timeouts, logging, and metrics output
stay outside the core; see the metrics package for a Prometheus-backed
observer.
*/
package pool
