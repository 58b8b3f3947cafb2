package core

import (
	"fmt"
	"sync"
)

// Handle is a generational index into a HandleTable. The zero Handle is never valid.
type Handle struct {
	Index      uint32
	Generation uint32
}

func (h Handle) IsValid() bool {
	return h.Generation != 0
}

func (h Handle) String() string {
	return fmt.Sprintf("%d:%d", h.Index, h.Generation)
}

type handleSlot[T any] struct {
	owner      T
	generation uint32
	used       bool
}

// HandleTable hands out generational handles for owners. A released slot is reused
// with a bumped generation, so stale handles never resolve to the new owner.
type HandleTable[T any] struct {
	mu    sync.Mutex
	slots []handleSlot[T]
	free  []uint32
	count int
}

func NewHandleTable[T any](capacity int) *HandleTable[T] {
	return &HandleTable[T]{
		slots: make([]handleSlot[T], 0, capacity),
	}
}

func (ht *HandleTable[T]) Acquire(owner T) Handle {
	ht.mu.Lock()
	defer ht.mu.Unlock()

	ht.count++
	// Existing free spot. Take it.
	if n := len(ht.free); n > 0 {
		index := ht.free[n-1]
		ht.free = ht.free[:n-1]
		slot := &ht.slots[index]
		slot.owner = owner
		slot.used = true
		return Handle{Index: index, Generation: slot.generation}
	}

	// If here, no existing free slots. Need a new one, so push one.
	ht.slots = append(ht.slots, handleSlot[T]{owner: owner, generation: 1, used: true})
	return Handle{Index: uint32(len(ht.slots) - 1), Generation: 1}
}

func (ht *HandleTable[T]) Get(h Handle) (T, bool) {
	ht.mu.Lock()
	defer ht.mu.Unlock()

	var zero T
	if !ht.validLocked(h) {
		return zero, false
	}
	return ht.slots[h.Index].owner, true
}

// Release frees the slot and returns the owner it held.
func (ht *HandleTable[T]) Release(h Handle) (T, error) {
	ht.mu.Lock()
	defer ht.mu.Unlock()

	var zero T
	if !ht.validLocked(h) {
		return zero, fmt.Errorf("release of handle %s: %w", h, ErrInvalidHandle)
	}
	slot := &ht.slots[h.Index]
	owner := slot.owner
	slot.owner = zero
	slot.used = false
	slot.generation++
	if slot.generation == 0 {
		slot.generation = 1
	}
	ht.free = append(ht.free, h.Index)
	ht.count--
	return owner, nil
}

func (ht *HandleTable[T]) Len() int {
	ht.mu.Lock()
	defer ht.mu.Unlock()
	return ht.count
}

// Each calls fn for every live owner. fn must not touch the table.
func (ht *HandleTable[T]) Each(fn func(Handle, T)) {
	ht.mu.Lock()
	defer ht.mu.Unlock()
	for i := range ht.slots {
		if ht.slots[i].used {
			fn(Handle{Index: uint32(i), Generation: ht.slots[i].generation}, ht.slots[i].owner)
		}
	}
}

func (ht *HandleTable[T]) validLocked(h Handle) bool {
	if !h.IsValid() || int(h.Index) >= len(ht.slots) {
		return false
	}
	slot := ht.slots[h.Index]
	return slot.used && slot.generation == h.Generation
}
