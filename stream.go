// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lpel

import (
	"sync"
	"unsafe"

	"code.hybscloud.com/atomix"

	"code.hybscloud.com/lpel/internal/cacheline"
	"code.hybscloud.com/lpel/internal/ring"
	"code.hybscloud.com/lpel/mon"
	"code.hybscloud.com/lpel/sched"
)

// Stream is a bounded, single-producer/single-consumer channel of
// opaque pointer-sized items. A Stream by itself moves no data — a
// task must Open a read-mode and a write-mode Descriptor onto it
// before Read/Write do anything.
//
// The counting coordinator (n_sem/e_sem) and the ring buffer together
// are the whole of the stream's concurrency design: n_sem counts
// filled slots from the consumer's point of view, e_sem counts empty
// slots from the producer's, and each one's sign carries a second bit
// of information — "a peer is currently blocked waiting for me" —
// without any separate flag. See Read/Write for the protocol.
type Stream struct {
	_    cacheline.Pad
	nSem atomix.Int64 // filled slots; negative means a reader is parked
	_    cacheline.Pad
	eSem atomix.Int64 // empty slots; negative means a writer is parked
	_    cacheline.Pad

	buffer *ring.Buffer

	// prodLock is taken by the producer around Put and the is_poll
	// handoff, and by a polling consumer around its own scan of Top. It
	// protects is_poll and the read side's poll-token handoff, not the
	// buffer itself (the buffer stays lock-free SPSC).
	prodLock sync.Mutex
	isPoll   bool // true while a consumer has armed this stream via Poll

	uid     uint64
	consSD  *Descriptor // currently bound read-mode descriptor, or nil
	prodSD  *Descriptor // currently bound write-mode descriptor, or nil
	handle  uint64      // this stream's slot in the Runtime's stream arena
	sched   sched.Scheduler
	monitor mon.Monitor
}

// UID returns the stream's process-unique identifier, stable for its
// whole lifetime. Useful for monitoring and diagnostics only.
func (s *Stream) UID() uint64 { return s.uid }

// Cap returns the stream's buffer capacity (a power of 2, possibly
// larger than what Create was asked for).
func (s *Stream) Cap() int { return s.buffer.Cap() }

func (sd *Descriptor) validate(op string, want Mode) {
	if sd.mode != want {
		precondition(op, "descriptor mode mismatch")
	}
}

// Read removes and returns the item at the head of sd's stream,
// blocking the calling task if the stream is currently empty. Read
// never returns an error: blocking is the only way it can fail to make
// immediate progress, and that is handled by the scheduler, not by a
// return value.
func (sd *Descriptor) Read() unsafe.Pointer {
	sd.validate("Read", Read)
	s := sd.stream

	if v := s.nSem.AddAcqRel(-1); v == -1 {
		s.monitor.StreamBlockon(s.uid, sd.task.ID(), sched.BlockedOnInput)
		s.sched.Block(sd.task, sched.BlockedOnInput)
	}

	item := s.buffer.Top()
	if item == nil {
		panic("lpel: internal invariant violated: Read resumed with an empty buffer")
	}
	s.buffer.Pop()

	if v := s.eSem.AddAcqRel(1); v == 0 {
		s.monitor.StreamWakeup(s.uid, s.prodSD.task.ID())
		s.sched.Unblock(sd.task, s.prodSD.task)
	}
	s.monitor.StreamMoved(s.uid, sd.task.ID())
	return item
}

// Write appends item to the tail of sd's stream, blocking the calling
// task if the stream is currently full. item must not be nil: nil is
// the buffer's own "empty" sentinel. Write never returns an error, for
// the same reason Read doesn't.
func (sd *Descriptor) Write(item unsafe.Pointer) {
	sd.validate("Write", Write)
	if item == nil {
		precondition("Write", "item must not be nil")
	}
	s := sd.stream

	if v := s.eSem.AddAcqRel(-1); v == -1 {
		s.monitor.StreamBlockon(s.uid, sd.task.ID(), sched.BlockedOnOutput)
		s.sched.Block(sd.task, sched.BlockedOnOutput)
	}
	s.completeWrite(sd, item)
}

// TryWrite attempts Write without blocking: if the stream is currently
// full it returns (false, ErrFull) and has no effect. Otherwise it
// performs the same steps as Write and returns (true, nil).
func (sd *Descriptor) TryWrite(item unsafe.Pointer) (bool, error) {
	sd.validate("TryWrite", Write)
	if item == nil {
		precondition("TryWrite", "item must not be nil")
	}
	s := sd.stream

	if !s.buffer.IsSpace() {
		return false, ErrFull
	}
	if v := s.eSem.AddAcqRel(-1); v == -1 {
		// IsSpace() observed room, but the consumer's Read pops the slot
		// before it increments e_sem: in that window e_sem is still 0,
		// so TryWrite parks here until that increment wakes it, under
		// the same protocol as Write.
		s.monitor.StreamBlockon(s.uid, sd.task.ID(), sched.BlockedOnOutput)
		s.sched.Block(sd.task, sched.BlockedOnOutput)
	}
	s.completeWrite(sd, item)
	return true, nil
}

// completeWrite is the second half of both Write and TryWrite: claim
// the slot in the buffer, hand the Poll wakeup token over if a
// consumer is currently armed on this stream, and wake a parked reader
// if n_sem's sign says one is waiting.
func (s *Stream) completeWrite(sd *Descriptor, item unsafe.Pointer) {
	s.prodLock.Lock()
	s.buffer.Put(item)
	var pollWon bool
	if s.isPoll {
		consTask := s.consSD.task
		pollWon = consTask.PollToken().SwapAcqRel(0) == 1
		s.isPoll = false
	}
	s.prodLock.Unlock()

	switch v := s.nSem.AddAcqRel(1); {
	case v == 0:
		s.monitor.StreamWakeup(s.uid, s.consSD.task.ID())
		s.sched.Unblock(sd.task, s.consSD.task)
	case pollWon:
		s.consSD.task.SetWakeupSD(s.consSD)
		s.monitor.StreamWakeup(s.uid, s.consSD.task.ID())
		s.sched.Unblock(sd.task, s.consSD.task)
	}
	s.monitor.StreamMoved(s.uid, sd.task.ID())
}
