package queue

import "sync/atomic"

// Ring is a bounded single-owner queue with work stealing. Exactly one
// goroutine (the owner) may call PushOwner and PopOwner; any goroutine
// may call Steal. The owner works the tail end in LIFO order for cache
// locality; stealers take the oldest item from the head end, which keeps
// them off the owner's cache line until the queue is nearly empty.
type Ring[T any] struct {
	ring []T
	mask int64

	// head is the next index to steal from. Advanced by stealers (and by
	// the owner when it races a stealer for the last item) via CAS.
	head atomic.Int64
	_    [56]byte // keep head and tail on separate cache lines

	// tail is the next index the owner pushes to. Owner-written only.
	tail atomic.Int64
}

// NewRing creates a ring with capacity rounded up to a power of two.
func NewRing[T any](capacity int) *Ring[T] {
	if capacity <= 0 {
		capacity = 2
	}
	size := int64(nextPowerOfTwo(uint32(capacity)))
	return &Ring[T]{
		ring: make([]T, size),
		mask: size - 1,
	}
}

// PushOwner appends an item at the tail. Owner-only. Returns false when
// the ring is full; the caller is expected to overflow elsewhere.
func (r *Ring[T]) PushOwner(v T) bool {
	tail := r.tail.Load()
	head := r.head.Load()
	if tail-head >= int64(len(r.ring)) {
		return false
	}
	r.ring[tail&r.mask] = v
	r.tail.Store(tail + 1)
	return true
}

// PopOwner removes the most recently pushed item. Owner-only. When only
// one item remains the owner competes with stealers for it via CAS on
// head; losing that race reports an empty ring.
func (r *Ring[T]) PopOwner() (v T, ok bool) {
	tail := r.tail.Load() - 1
	// Publish the claim on the slot before inspecting head, so a stealer
	// racing for the same slot is guaranteed to see it.
	r.tail.Store(tail)

	head := r.head.Load()
	if head > tail {
		// Already empty; undo the claim.
		r.tail.Store(head)
		return v, false
	}

	v = r.ring[tail&r.mask]
	if head == tail {
		// Last item: settle the race with stealers on head.
		won := r.head.CompareAndSwap(head, head+1)
		r.tail.Store(head + 1)
		if !won {
			var zero T
			return zero, false
		}
	}
	return v, true
}

// Steal removes the oldest item. Safe from any goroutine. It makes a
// single CAS attempt; contention or an empty ring both report false, and
// the caller moves on to the next victim.
func (r *Ring[T]) Steal() (v T, ok bool) {
	head := r.head.Load()
	tail := r.tail.Load()
	if head >= tail {
		return v, false
	}
	v = r.ring[head&r.mask]
	if !r.head.CompareAndSwap(head, head+1) {
		var zero T
		return zero, false
	}
	return v, true
}

// Len returns the number of queued items.
func (r *Ring[T]) Len() int {
	head := r.head.Load()
	tail := r.tail.Load()
	if tail < head {
		return 0
	}
	return int(tail - head)
}

// Cap returns the fixed capacity.
func (r *Ring[T]) Cap() int {
	return len(r.ring)
}
