// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package arena implements the "arena of streams addressed by handle"
// suggested by the stream core's design notes: Stream and Descriptor
// values are never individually heap-allocated and freed one at a time.
// Each arena preallocates a fixed number of slots up front and hands
// them out by index, so a slot's address is stable for the arena's
// whole lifetime and Close/Destroy simply returns the index to the free
// list.
//
// Exhausting an arena's capacity is how ResourceExhaustion is modeled:
// Go has no explicit allocation-failure return, so the arena's own
// bound stands in for it.
package arena

import (
	"errors"

	"code.hybscloud.com/lpel/internal/mpmcq"
)

// ErrExhausted is returned by Alloc when the arena has no free slots.
var ErrExhausted = errors.New("arena: capacity exhausted")

// Arena hands out *T values from a fixed-capacity backing slice. Alloc
// and Free are safe to call concurrently from different goroutines
// (e.g. two tasks opening streams at the same time): the free-slot
// index list is the same bounded MPMC queue the scheduler uses for its
// admission-slot pool, since both are "many goroutines may claim or
// return a handle concurrently" problems.
type Arena[T any] struct {
	storage []T
	free    *mpmcq.Queue[uint64]
}

// New creates an arena with room for exactly capacity values of T.
func New[T any](capacity int) *Arena[T] {
	if capacity < 1 {
		panic("lpel: arena capacity must be >= 1")
	}
	a := &Arena[T]{
		storage: make([]T, capacity),
		free:    mpmcq.New[uint64](capacity),
	}
	for i := 0; i < capacity; i++ {
		if err := a.free.Push(uint64(i)); err != nil {
			// capacity was sized for exactly this many pushes; a push
			// failing here means New's bookkeeping is broken.
			panic("lpel: arena: unreachable free-list overflow during init")
		}
	}
	return a
}

// Cap returns the arena's configured capacity.
func (a *Arena[T]) Cap() int { return len(a.storage) }

// Alloc claims a free slot and returns a stable pointer into the
// arena's backing storage, plus the handle needed to Free it later.
// Returns ErrExhausted if every slot is currently in use.
func (a *Arena[T]) Alloc() (*T, uint64, error) {
	idx, err := a.free.Pop()
	if err != nil {
		return nil, 0, ErrExhausted
	}
	return &a.storage[idx], idx, nil
}

// Free returns handle to the free list, resetting its slot to the zero
// value of T. handle must have come from a prior Alloc on this same
// arena and must not still be referenced by any live Descriptor/Stream.
func (a *Arena[T]) Free(handle uint64) {
	var zero T
	a.storage[handle] = zero
	if err := a.free.Push(handle); err != nil {
		panic("lpel: arena: free of handle that was never allocated from this arena")
	}
}
