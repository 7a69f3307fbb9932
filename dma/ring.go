package dma

import (
	"errors"
	"unsafe"
)

// ErrRingFull is returned when a descriptor won't fit in the ring's
// fixed capacity. It is not a program error: callers (the frame builder,
// the batch planner) treat it as "stop and let the next interrupt
// refill."
var ErrRingFull = errors.New("dma: descriptor ring full")

// ErrWorkingStorageFull is returned when a control-byte payload won't
// fit in the ring's side arena.
var ErrWorkingStorageFull = errors.New("dma: working storage full")

// Ring is a fixed-capacity descriptor ring plus a side arena
// (workingStorage) for the small control-byte payloads descriptors
// reference. Descriptors are built in insertion order; Next links are
// written once, by Finalize, so building never has to rewrite stale
// pointers.
type Ring struct {
	frames         []Descriptor
	workingStorage []byte
	size           int
	storageIdx     int
}

// NewRing allocates a ring with the given descriptor and working-storage
// capacities.
func NewRing(capFrames, capBytes int) *Ring {
	return &Ring{
		frames:         make([]Descriptor, capFrames),
		workingStorage: make([]byte, capBytes),
	}
}

// Size reports the number of descriptor slots currently in use.
func (r *Ring) Size() int { return r.size }

// StorageIdx reports the number of working-storage bytes currently in
// use.
func (r *Ring) StorageIdx() int { return r.storageIdx }

// SetStorageIdx rewinds or restores the working-storage cursor. The
// batch planner's cold build uses it to rewind the arena to empty before
// staging a fresh set of row templates.
func (r *Ring) SetStorageIdx(n int) { r.storageIdx = n }

// CanAdd reports whether n more descriptors fit in the ring.
func (r *Ring) CanAdd(n int) bool {
	return r.size+n <= len(r.frames)
}

// Add appends a descriptor, failing if the ring is full.
func (r *Ring) Add(d Descriptor) error {
	if !r.CanAdd(1) {
		return ErrRingFull
	}
	r.frames[r.size] = d
	r.size++
	return nil
}

// Get returns the descriptor at index i, or nil if i is out of the
// currently-used range [0, Size()).
func (r *Ring) Get(i int) *Descriptor {
	if i < 0 || i >= r.size {
		return nil
	}
	return &r.frames[i]
}

// GetLast returns the most recently added descriptor, or nil if the
// ring is empty.
func (r *Ring) GetLast() *Descriptor {
	return r.Get(r.size - 1)
}

// ClearFrames resets the descriptor count to zero without touching
// working storage.
func (r *Ring) ClearFrames() {
	r.size = 0
}

// SetSize truncates the descriptor count to n, for a hot-patch batch
// that needs fewer rows than the template it is reusing. It never grows
// size — a caller needing more slots than are already built must cold
// build instead (spec.md §4.4 tie-break: hot patch must not increase
// size beyond what the template occupies).
func (r *Ring) SetSize(n int) {
	if n < r.size {
		r.size = n
	}
}

// Reset clears the ring back to empty. It does not reset any snapshot
// fields an Operation State keeps for chain reuse — those are the
// caller's responsibility (see spec.md §4.1's "full" parameter, carried
// here by the caller deciding whether to also clear its own last-*
// fields).
func (r *Ring) Reset() {
	r.size = 0
	r.storageIdx = 0
}

// CanAddWorkingData reports whether n more bytes fit in working storage.
//
// The original C++ computed (storageIdx-1)+size < cap, which underflows
// when storageIdx is 0 on an unsigned type (spec.md §9's documented open
// question). This uses the corrected storageIdx+n <= cap.
func (r *Ring) CanAddWorkingData(n int) bool {
	return r.storageIdx+n <= len(r.workingStorage)
}

// AddWorkingData copies buf into working storage and returns the
// address of the copied prefix, for use as a descriptor source address.
func (r *Ring) AddWorkingData(buf []byte) (uintptr, error) {
	if !r.CanAddWorkingData(len(buf)) {
		return 0, ErrWorkingStorageFull
	}
	start := r.storageIdx
	copy(r.workingStorage[start:], buf)
	r.storageIdx += len(buf)
	return r.addressOf(start), nil
}

// addressOf returns the address of workingStorage[i], stable for the
// lifetime of the ring (the backing array is never reallocated).
func (r *Ring) addressOf(i int) uintptr {
	return uintptr(unsafe.Pointer(&r.workingStorage[i]))
}

// WorkingStorageBounds reports the half-open byte range currently
// occupied in working storage, for validating that a finalized chain's
// source addresses still point at live data (spec.md §8 property 4).
func (r *Ring) WorkingStorageBounds() (start, end uintptr) {
	if len(r.workingStorage) == 0 {
		return 0, 0
	}
	return r.addressOf(0), r.addressOf(0) + uintptr(r.storageIdx)
}

// Finalize visits descriptor slots [0, Size()) in order, writing each
// slot's Next to the address of the following slot, with the last
// slot's Next cleared to zero and its Done flag explicitly cleared. It
// returns the address of the head descriptor (slot 0), or 0 if the ring
// is empty. Finalize must be the last ring mutation before the chain is
// handed to the engine — Add must not be called again until the DMA run
// that consumes this chain completes.
func (r *Ring) Finalize() uintptr {
	if r.size == 0 {
		return 0
	}
	for i := 0; i < r.size-1; i++ {
		r.frames[i].Next = uintptr(unsafe.Pointer(&r.frames[i+1]))
	}
	last := &r.frames[r.size-1]
	last.Next = 0
	last.ControlA.Done = false
	return uintptr(unsafe.Pointer(&r.frames[0]))
}
