package pool

import "sync/atomic"

// lifecycle is the coarse pool lifecycle stored in the scheduler state
// word. It moves monotonically toward lifecycleShutdown.
type lifecycle uint32

const (
	// lifecyclePending means no wake is in flight; a submitter may signal.
	lifecyclePending lifecycle = iota
	// lifecycleSignaled means a submitter has signaled a parked worker
	// that has not yet picked the wake up.
	lifecycleSignaled
	// lifecycleWaking means a woken worker is searching for the work it
	// was signaled about.
	lifecycleWaking
	// lifecycleShutdown is terminal.
	lifecycleShutdown
)

// String returns the string representation of the lifecycle
func (l lifecycle) String() string {
	switch l {
	case lifecyclePending:
		return "pending"
	case lifecycleSignaled:
		return "signaled"
	case lifecycleWaking:
		return "waking"
	case lifecycleShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Bit layout of the scheduler state word:
//
//	bits  0..15  idle worker count
//	bits 16..31  spawned worker count
//	bits 32..33  lifecycle
const (
	idleShift      = 0
	spawnedShift   = 16
	lifecycleShift = 32

	countMask     = 0xffff
	lifecycleMask = uint64(0x3) << lifecycleShift
)

// schedState packs the idle count, spawned count, and lifecycle into one
// atomic word so a submitter can read a consistent snapshot with a single
// load. Counters move with field-shifted adds (a counter never underflows
// its field, so carries cannot corrupt neighbours); lifecycle transitions
// use CAS.
type schedState struct {
	word atomic.Uint64
}

func (s *schedState) snapshot() (idle, spawned int, lc lifecycle) {
	w := s.word.Load()
	return int(w >> idleShift & countMask),
		int(w >> spawnedShift & countMask),
		lifecycle(w >> lifecycleShift & 0x3)
}

func (s *schedState) idle() int {
	return int(s.word.Load() >> idleShift & countMask)
}

func (s *schedState) spawned() int {
	return int(s.word.Load() >> spawnedShift & countMask)
}

func (s *schedState) lifecycle() lifecycle {
	return lifecycle(s.word.Load() >> lifecycleShift & 0x3)
}

func (s *schedState) incIdle() {
	s.word.Add(1 << idleShift)
}

func (s *schedState) decIdle() {
	s.word.Add(^(uint64(1) << idleShift) + 1)
}

func (s *schedState) incSpawned() {
	s.word.Add(1 << spawnedShift)
}

func (s *schedState) decSpawned() {
	s.word.Add(^(uint64(1) << spawnedShift) + 1)
}

// transition CASes the lifecycle from one value to another, leaving the
// counters untouched. It returns false when the observed lifecycle is not
// `from`, including when the pool has already shut down.
func (s *schedState) transition(from, to lifecycle) bool {
	for {
		w := s.word.Load()
		if lifecycle(w>>lifecycleShift&0x3) != from {
			return false
		}
		updated := w&^lifecycleMask | uint64(to)<<lifecycleShift
		if s.word.CompareAndSwap(w, updated) {
			return true
		}
	}
}

// shutdown forces the lifecycle to its terminal value regardless of the
// current one. Idempotent.
func (s *schedState) shutdown() {
	for {
		w := s.word.Load()
		if lifecycle(w>>lifecycleShift&0x3) == lifecycleShutdown {
			return
		}
		updated := w&^lifecycleMask | uint64(lifecycleShutdown)<<lifecycleShift
		if s.word.CompareAndSwap(w, updated) {
			return
		}
	}
}
