package queue

import (
	"math/bits"
	"sync"
	"sync/atomic"

	"github.com/jzx17/stealpool/pkg/types"
)

// nilIndex marks the absence of a node.
const nilIndex = ^uint32(0)

// DefaultChunkSize is the node count of each arena chunk when none is
// configured.
const DefaultChunkSize = 256

// node wraps one queued value plus its link. A node is reachable from at
// most one list at any instant: the MPSC list, or the pool's free list.
type node[T any] struct {
	next atomic.Uint32 // index of the successor, nilIndex when unlinked
	val  T
}

// NodePool hands out and reclaims queue nodes without locking the hot
// path. Nodes are allocated in chunks and addressed by index; the chunks
// themselves are never freed while the pool is live, so node pointers
// stay valid for the pool's lifetime.
type NodePool[T any] struct {
	// head packs a 32-bit generation tag (high) with the free-list head
	// index (low). The tag advances on every successful CAS so that a
	// node popped and re-pushed between a reader's load and its CAS
	// cannot be mistaken for an unchanged list.
	head atomic.Uint64

	allocated atomic.Int64
	freeLen   atomic.Int64

	chunks     atomic.Pointer[[][]node[T]]
	chunkSize  uint32
	chunkShift uint

	maxNodes int64

	// mu serializes chunk growth only; it is never taken by Acquire or
	// Release once the free list has nodes.
	mu sync.Mutex
}

// NewNodePool creates a pool that grows in chunks of chunkSize nodes
// (rounded up to a power of two). maxNodes caps the total allocation,
// rounded up to whole chunks; 0 means unbounded. No nodes are allocated
// until the first Acquire.
func NewNodePool[T any](chunkSize, maxNodes int) *NodePool[T] {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	size := nextPowerOfTwo(uint32(chunkSize))

	p := &NodePool[T]{
		chunkSize:  size,
		chunkShift: uint(bits.TrailingZeros32(size)),
	}
	if maxNodes > 0 {
		chunks := (int64(maxNodes) + int64(size) - 1) / int64(size)
		p.maxNodes = chunks * int64(size)
	}

	p.head.Store(packHead(0, nilIndex))
	empty := make([][]node[T], 0)
	p.chunks.Store(&empty)
	return p
}

// Acquire pops a free node and returns its index. When the free list is
// empty it falls back to growing the arena and retries; the only failure
// mode is the configured node cap being reached.
func (p *NodePool[T]) Acquire() (uint32, error) {
	for {
		w := p.head.Load()
		tag, idx := unpackHead(w)
		if idx == nilIndex {
			if err := p.grow(); err != nil {
				return nilIndex, err
			}
			continue
		}
		n := p.at(idx)
		next := n.next.Load()
		if p.head.CompareAndSwap(w, packHead(tag+1, next)) {
			n.next.Store(nilIndex)
			p.freeLen.Add(-1)
			return idx, nil
		}
	}
}

// Release pushes the node back onto the free list. The caller must hold
// exclusive ownership of the node and must not touch it afterwards.
func (p *NodePool[T]) Release(idx uint32) {
	n := p.at(idx)
	var zero T
	n.val = zero
	for {
		w := p.head.Load()
		tag, head := unpackHead(w)
		n.next.Store(head)
		if p.head.CompareAndSwap(w, packHead(tag+1, idx)) {
			p.freeLen.Add(1)
			return
		}
	}
}

// at returns the node for an index. Indices are stable: chunk slices are
// published copy-on-write and existing chunks never move.
func (p *NodePool[T]) at(idx uint32) *node[T] {
	chunks := *p.chunks.Load()
	return &chunks[idx>>p.chunkShift][idx&(p.chunkSize-1)]
}

// grow appends one chunk and splices it onto the free list.
func (p *NodePool[T]) grow() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Another goroutine may have grown the arena while we waited.
	if _, idx := unpackHead(p.head.Load()); idx != nilIndex {
		return nil
	}

	if p.maxNodes > 0 && p.allocated.Load() >= p.maxNodes {
		return types.ErrNodesExhausted
	}

	old := *p.chunks.Load()
	base := uint32(len(old)) << p.chunkShift
	chunk := make([]node[T], p.chunkSize)
	for i := range chunk {
		if i+1 < len(chunk) {
			chunk[i].next.Store(base + uint32(i) + 1)
		}
	}

	updated := make([][]node[T], len(old)+1)
	copy(updated, old)
	updated[len(old)] = chunk
	p.chunks.Store(&updated)
	p.allocated.Add(int64(p.chunkSize))

	first := base
	last := base + p.chunkSize - 1
	for {
		w := p.head.Load()
		tag, head := unpackHead(w)
		chunk[last-base].next.Store(head)
		if p.head.CompareAndSwap(w, packHead(tag+1, first)) {
			break
		}
	}
	p.freeLen.Add(int64(p.chunkSize))
	return nil
}

// Allocated returns the total number of nodes ever allocated.
func (p *NodePool[T]) Allocated() int {
	return int(p.allocated.Load())
}

// FreeLen returns the number of nodes currently on the free list. The
// value is exact only when no Acquire or Release is in flight.
func (p *NodePool[T]) FreeLen() int {
	return int(p.freeLen.Load())
}

func packHead(tag, idx uint32) uint64 {
	return uint64(tag)<<32 | uint64(idx)
}

func unpackHead(w uint64) (tag, idx uint32) {
	return uint32(w >> 32), uint32(w)
}

func nextPowerOfTwo(v uint32) uint32 {
	if v == 0 {
		return 1
	}
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v++
	return v
}
