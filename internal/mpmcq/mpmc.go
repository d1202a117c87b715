// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mpmcq is the bounded multi-producer/multi-consumer queue used
// as internal plumbing by the scheduler (the admission-slot pool) and
// the arena (the free-handle queue). It is not exposed to stream code:
// streams themselves stay strictly SPSC per the module's non-goals —
// this is the shape needed when many worker goroutines may concurrently
// push and pop, which neither end of a stream ever does.
//
// The algorithm is the teacher library's SCQ-derived MPMC (Nikolaev,
// DISC 2019): producers and consumers both use fetch-and-add to claim a
// slot, with a per-slot cycle counter for ABA safety and a threshold
// counter to avoid livelock when the queue is empty.
package mpmcq

import (
	"errors"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"

	"code.hybscloud.com/lpel/internal/cacheline"
)

// ErrFull/ErrEmpty are the non-fatal, control-flow signals for a queue
// that cannot make progress right now.
var (
	ErrFull  = errors.New("mpmcq: queue full")
	ErrEmpty = errors.New("mpmcq: queue empty")
)

// Queue is a bounded MPMC queue of T.
type Queue[T any] struct {
	_         cacheline.Pad
	tail      atomix.Uint64 // producer index (FAA)
	_         cacheline.Pad
	head      atomix.Uint64 // consumer index (FAA)
	_         cacheline.Pad
	threshold atomix.Int64 // livelock prevention for Pop
	_         cacheline.Pad
	draining  atomix.Bool // drain mode: skip the threshold check
	_         cacheline.Pad
	buffer    []slot[T]
	capacity  uint64
	size      uint64 // 2*capacity physical slots
	mask      uint64
}

type slot[T any] struct {
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
		buffer:   make([]slot[T], size),
		capacity: n,
		size:     size,
		mask:     size - 1,
	}
	q.threshold.StoreRelaxed(3*int64(n) - 1)
	for i := uint64(0); i < size; i++ {
		q.buffer[i].cycle.StoreRelaxed(i / n)
	}
	return q
}

// Cap returns the queue's usable capacity.
func (q *Queue[T]) Cap() int { return int(q.capacity) }

// Drain marks the queue as draining: Pop stops honoring the livelock
// threshold so the remaining items can be pulled out once producers
// have stopped pushing.
func (q *Queue[T]) Drain() { q.draining.StoreRelease(true) }

// Push adds an item. Returns ErrFull if the queue has no room.
func (q *Queue[T]) Push(item T) error {
	sw := spin.Wait{}
	for {
		tail := q.tail.LoadAcquire()
		head := q.head.LoadAcquire()
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
			q.threshold.StoreRelaxed(3*int64(q.capacity) - 1)
			return nil
		}
		if int64(slotCycle) < int64(expectedCycle) {
			return ErrFull
		}
		sw.Once()
	}
}

// Pop removes and returns an item. Returns ErrEmpty if none are
// available right now.
func (q *Queue[T]) Pop() (T, error) {
	var zero T
	if !q.draining.LoadAcquire() && q.threshold.LoadRelaxed() < 0 {
		return zero, ErrEmpty
	}

	sw := spin.Wait{}
	for {
		myHead := q.head.AddAcqRel(1) - 1
		s := &q.buffer[myHead&q.mask]
		expectedCycle := myHead/q.capacity + 1
		slotCycle := s.cycle.LoadAcquire()

		if slotCycle == expectedCycle {
			item := s.data
			s.data = zero
			nextEnqCycle := (myHead + q.size) / q.capacity
			s.cycle.StoreRelease(nextEnqCycle)
			return item, nil
		}

		if int64(slotCycle) < int64(expectedCycle) {
			nextEnqCycle := (myHead + q.size) / q.capacity
			s.cycle.CompareAndSwapAcqRel(slotCycle, nextEnqCycle)

			tail := q.tail.LoadAcquire()
			if tail <= myHead+1 {
				q.catchUp(tail, myHead+1)
				q.threshold.AddAcqRel(-1)
				return zero, ErrEmpty
			}
			if q.threshold.AddAcqRel(-1) <= 0 && !q.draining.LoadAcquire() {
				return zero, ErrEmpty
			}
		}
		sw.Once()
	}
}

func (q *Queue[T]) catchUp(tail, head uint64) {
	for tail < head {
		if q.tail.CompareAndSwapRelaxed(tail, head) {
			break
		}
		tail = q.tail.LoadRelaxed()
		head = q.head.LoadRelaxed()
	}
}
