/*
Package queue provides the lock-free building blocks of the stealpool
scheduler: a recycling node pool, a multi-producer/single-consumer linked
queue built on it, and a bounded work-stealing ring buffer.

# NodePool

NodePool is an arena-backed free list. Nodes live in contiguous chunks and
are addressed by stable 32-bit indices; the free-list head packs the index
with a generation tag in one 64-bit word so CAS reclamation stays safe when
node slots are reused. Acquire and Release never take a lock on the fast
path; growing the arena appends a chunk under a mutex that guards chunk
bookkeeping only.

# MPSC

MPSC is the non-intrusive 1024cores queue adapted to pooled nodes: any
number of producers push with a single atomic exchange of the head index
followed by a store linking the previous head, and one consumer pops from
the tail. The consumed tail node doubles as the empty sentinel and is
recycled through the node pool on every pop. Pushes from one producer are
observed in order (FIFO per producer).

# Ring

Ring is a fixed-capacity single-owner queue with work stealing. The owner
pushes and pops at the tail (LIFO, cache-friendly); other goroutines steal
one item at a time from the head (FIFO) with a single CAS attempt, so a
contended steal fails fast instead of starving the owner.
*/
package queue
