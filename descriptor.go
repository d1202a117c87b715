// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lpel

import (
	"unsafe"

	"code.hybscloud.com/lpel/sched"
)

// Descriptor is a task's private binding to one end of one Stream: the
// mode (Read or Write), the owning task, and — for read descriptors —
// the intrusive link used when the descriptor is a member of a Set.
//
// A Descriptor belongs to exactly one task for its whole lifetime.
// Nothing in this package synchronizes access to a Descriptor's own
// fields: only the owning task ever calls Read/Write/TryWrite/Poll/Add
// on it, by construction of the API (Open always binds the calling
// task's own Self()).
type Descriptor struct {
	task   sched.Task
	stream *Stream
	mode   Mode
	handle uint64 // this descriptor's slot in the Runtime's descriptor arena

	// next links this descriptor into its owning Set's circular list.
	// Zero value (nil) means "not a member of any Set".
	next *Descriptor

	inSet bool
}

// Task returns the task this descriptor is bound to.
func (sd *Descriptor) Task() sched.Task { return sd.task }

// Mode returns the end of the stream this descriptor binds to.
func (sd *Descriptor) Mode() Mode { return sd.mode }

// Get returns the stream sd is currently bound to. Equivalent to the
// exposed Get(sd) operation in spec.md §6.
func Get(sd *Descriptor) *Stream { return sd.stream }

// Peek returns the item at the head of sd's stream without removing
// it, or nil if the stream is currently empty. Peek is idempotent:
// repeated calls with no intervening Read return the same value. Valid
// only on read-mode descriptors.
func Peek(sd *Descriptor) unsafe.Pointer {
	if sd.mode != Read {
		precondition("Peek", "descriptor must be read-mode")
	}
	return sd.stream.buffer.Top()
}
