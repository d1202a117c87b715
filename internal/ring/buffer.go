// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ring provides the bounded single-producer/single-consumer
// buffer that backs every stream.
//
// It is Lamport's ring buffer with the cached-index optimization: the
// producer caches the consumer's head, the consumer caches the
// producer's tail, each separated onto its own cache line. This is the
// same design as the teacher library's SPSCPtr, narrowed to the one
// shape a stream needs: opaque pointer-sized items, peek split out from
// removal so a consumer can test for data without consuming it.
package ring

import (
	"unsafe"

	"code.hybscloud.com/atomix"

	"code.hybscloud.com/lpel/internal/cacheline"
)

// Buffer is a fixed-capacity ring of opaque item pointers. Exactly one
// goroutine may call Top/Pop; exactly one (possibly different) goroutine
// may call Put/IsSpace. The buffer never dereferences the items it
// holds; blocking when full or empty is the caller's responsibility.
type Buffer struct {
	_          cacheline.Pad
	head       atomix.Uint64 // consumer index
	_          cacheline.Pad
	cachedTail uint64 // consumer's private cache of tail
	_          cacheline.Pad
	tail       atomix.Uint64 // producer index
	_          cacheline.Pad
	cachedHead uint64 // producer's private cache of head
	_          cacheline.Pad
	buffer     []unsafe.Pointer
	mask       uint64
}

// New creates a buffer of the given capacity, rounded up to the next
// power of 2. Capacity must be at least 1; callers that receive 0 should
// substitute a package-level default before calling New.
func New(capacity int) *Buffer {
	if capacity < 1 {
		panic("lpel: ring capacity must be >= 1")
	}
	n := uint64(1)
	if capacity > 1 {
		n = uint64(cacheline.RoundToPow2(capacity))
	}
	return &Buffer{
		buffer: make([]unsafe.Pointer, n),
		mask:   n - 1,
	}
}

// Cap returns the buffer's physical capacity (a power of 2).
func (b *Buffer) Cap() int {
	return int(b.mask + 1)
}

// IsSpace reports whether Put may be called without blocking. Producer
// side only.
func (b *Buffer) IsSpace() bool {
	tail := b.tail.LoadRelaxed()
	if tail-b.cachedHead > b.mask {
		b.cachedHead = b.head.LoadAcquire()
		if tail-b.cachedHead > b.mask {
			return false
		}
	}
	return true
}

// Put appends item at the tail. Valid only when IsSpace reported true
// since the last call (no other producer-side operation intervened).
// Producer side only.
func (b *Buffer) Put(item unsafe.Pointer) {
	tail := b.tail.LoadRelaxed()
	b.buffer[tail&b.mask] = item
	b.tail.StoreRelease(tail + 1)
}

// Top returns the item at the head without removing it, or nil if the
// buffer is empty. Consumer side only.
func (b *Buffer) Top() unsafe.Pointer {
	head := b.head.LoadRelaxed()
	if head >= b.cachedTail {
		b.cachedTail = b.tail.LoadAcquire()
		if head >= b.cachedTail {
			return nil
		}
	}
	return b.buffer[head&b.mask]
}

// Pop removes the head item. Valid only when Top would return non-nil.
// Consumer side only.
func (b *Buffer) Pop() {
	head := b.head.LoadRelaxed()
	b.buffer[head&b.mask] = nil
	b.head.StoreRelease(head + 1)
}
