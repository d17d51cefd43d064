package queue

import "sync/atomic"

// MPSC is a multi-producer/single-consumer linked queue backed by a
// NodePool. Push is safe from any goroutine and is wait-free apart from
// the pool's rare chunk-allocation slow path. Pop must only be called
// from one consumer goroutine at a time.
//
// The queue always holds one node beyond its values: the tail node is the
// already-consumed sentinel whose next link points at the oldest live
// value. Every Pop recycles the old sentinel through the node pool.
type MPSC[T any] struct {
	pool *NodePool[T]
	// head is the producers' insertion point: the index of the most
	// recently pushed node.
	head atomic.Uint32
	// tail is the consumer's removal point: the index of the sentinel.
	// Written only by the consumer; read by anyone via Empty.
	tail atomic.Uint32
	size atomic.Int64
}

// NewMPSC creates an empty queue drawing nodes from a fresh pool with the
// given chunk size and node cap (0 = unbounded).
func NewMPSC[T any](chunkSize, maxNodes int) *MPSC[T] {
	pool := NewNodePool[T](chunkSize, maxNodes)
	stub, err := pool.Acquire()
	if err != nil {
		// The first chunk always fits under any positive cap.
		panic("queue: node pool rejected sentinel allocation: " + err.Error())
	}
	q := &MPSC[T]{pool: pool}
	q.head.Store(stub)
	q.tail.Store(stub)
	return q
}

// Push appends a value. It fails only when the node pool cannot grow.
//
// The push is a two-step handoff: an atomic exchange moves head to the
// new node, then a store links the previous head to it. Between the two
// steps the queue is in a detectable transient state: head has advanced
// but the link is not yet visible. Pop reports that as "not yet
// consumable" rather than empty.
func (q *MPSC[T]) Push(v T) error {
	idx, err := q.pool.Acquire()
	if err != nil {
		return err
	}
	n := q.pool.at(idx)
	n.val = v

	prev := q.head.Swap(idx)
	q.pool.at(prev).next.Store(idx)
	q.size.Add(1)
	return nil
}

// Pop removes and returns the oldest value. ok is false when nothing is
// consumable, either because the queue is empty or because a producer is
// mid-push; Empty distinguishes the two.
func (q *MPSC[T]) Pop() (v T, ok bool) {
	tail := q.tail.Load()
	next := q.pool.at(tail).next.Load()
	if next == nilIndex {
		return v, false
	}

	n := q.pool.at(next)
	v = n.val
	var zero T
	n.val = zero

	// The consumed node becomes the new sentinel; the old one goes back
	// to the free list.
	q.tail.Store(next)
	q.pool.Release(tail)
	q.size.Add(-1)
	return v, true
}

// Empty reports whether the queue is genuinely empty: the sentinel has no
// successor and no push has advanced the head past it. A false return
// after a failed Pop means a producer is mid-push and the value will
// become consumable shortly.
func (q *MPSC[T]) Empty() bool {
	tail := q.tail.Load()
	if q.pool.at(tail).next.Load() != nilIndex {
		return false
	}
	return q.head.Load() == tail
}

// Len returns the number of queued values, counting values whose link is
// still being published.
func (q *MPSC[T]) Len() int {
	return int(q.size.Load())
}

// Pool exposes the backing node pool for conservation checks in tests.
func (q *MPSC[T]) Pool() *NodePool[T] {
	return q.pool
}
