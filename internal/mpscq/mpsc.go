// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mpscq is the bounded multi-producer/single-consumer queue
// used internally by the async monitoring sink: every stream operation
// that fires a monitoring hook is a potential producer, and exactly one
// dedicated goroutine drains and formats events. Adapted from the
// teacher library's FAA-based MPSC (a single consumer index owned by
// the drain goroutine, producers racing via fetch-and-add on the tail).
package mpscq

import (
	"errors"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"

	"code.hybscloud.com/lpel/internal/cacheline"
)

// ErrFull is returned by Push when the queue has no room.
var ErrFull = errors.New("mpscq: queue full")

// ErrEmpty is returned by Pop when the queue is empty.
var ErrEmpty = errors.New("mpscq: queue empty")

// Queue is a bounded MPSC queue of T.
type Queue[T any] struct {
	_        cacheline.Pad
	head     atomix.Uint64 // consumer index, single consumer
	_        cacheline.Pad
	tail     atomix.Uint64 // producer index (FAA)
	_        cacheline.Pad
	buffer   []mpscSlot[T]
	capacity uint64
	size     uint64 // 2*capacity
	mask     uint64
}

type mpscSlot[T any] struct {
	cycle atomix.Uint64
	data  T
	_     cacheline.PadShort
}

// New creates a queue of the given capacity, rounded up to the next
// power of 2.
func New[T any](capacity int) *Queue[T] {
	if capacity < 2 {
		capacity = 2
	}
	n := uint64(cacheline.RoundToPow2(capacity))
	size := n * 2

	q := &Queue[T]{
		buffer:   make([]mpscSlot[T], size),
		capacity: n,
		size:     size,
		mask:     size - 1,
	}
	for i := uint64(0); i < size; i++ {
		q.buffer[i].cycle.StoreRelaxed(i / n)
	}
	return q
}

// Push adds an item. Safe from any number of concurrent goroutines.
func (q *Queue[T]) Push(item T) error {
	sw := spin.Wait{}
	for {
		tail := q.tail.LoadAcquire()
		head := q.head.LoadRelaxed()
		if tail >= head+q.capacity {
			return ErrFull
		}

		myTail := q.tail.AddAcqRel(1) - 1
		s := &q.buffer[myTail&q.mask]
		expectedCycle := myTail / q.capacity
		slotCycle := s.cycle.LoadAcquire()

		if slotCycle == expectedCycle {
			s.data = item
			s.cycle.StoreRelease(expectedCycle + 1)
			return nil
		}
		if int64(slotCycle) < int64(expectedCycle) {
			return ErrFull
		}
		sw.Once()
	}
}

// Pop removes and returns the head item. Single consumer only.
func (q *Queue[T]) Pop() (T, error) {
	var zero T
	head := q.head.LoadRelaxed()
	cycle := head / q.capacity
	s := &q.buffer[head&q.mask]

	slotCycle := s.cycle.LoadAcquire()
	if slotCycle != cycle+1 {
		return zero, ErrEmpty
	}

	item := s.data
	s.data = zero
	nextEnqCycle := (head + q.size) / q.capacity
	s.cycle.StoreRelease(nextEnqCycle)
	q.head.StoreRelaxed(head + 1)
	return item, nil
}
