// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lpel

import (
	"context"

	"code.hybscloud.com/lpel/sched"
)

// Set is an ordered, circular collection of read-mode descriptors
// belonging to one task, consumed by Poll. A Set is not safe for
// concurrent use from more than one goroutine: only the owning task
// ever calls Add/Remove/Poll on it, by construction (every descriptor
// in the set was Opened by that same task).
type Set struct {
	task      sched.Task
	scheduler sched.Scheduler
	head      *Descriptor // arbitrary fixed member, used to find the end of the ring
	cursor    *Descriptor // where the next Poll scan starts
	count     int
}

// NewSet creates an empty descriptor set owned by the task Self
// resolves from ctx.
func (rt *Runtime) NewSet(ctx context.Context) *Set {
	return &Set{task: rt.scheduler.Self(ctx), scheduler: rt.scheduler}
}

// Add inserts sd into the set. Precondition: sd must be a read-mode
// descriptor owned by the set's task, and must not already belong to
// any set. Violating this is a programming error and panics.
func (set *Set) Add(sd *Descriptor) {
	if sd.mode != Read {
		precondition("Set.Add", "descriptor must be read-mode")
	}
	if sd.task != set.task {
		precondition("Set.Add", "descriptor belongs to a different task than the set")
	}
	if sd.inSet {
		precondition("Set.Add", "descriptor already belongs to a set")
	}

	if set.head == nil {
		sd.next = sd
		set.head = sd
		set.cursor = sd
	} else {
		last := set.head
		for last.next != set.head {
			last = last.next
		}
		last.next = sd
		sd.next = set.head
	}
	sd.inSet = true
	set.count++
}

// Remove unlinks sd from the set. No-op if sd is not a member.
func (set *Set) Remove(sd *Descriptor) {
	if !sd.inSet || set.head == nil {
		return
	}

	if sd.next == sd {
		// sole member
		set.head = nil
		set.cursor = nil
		set.count = 0
		sd.next = nil
		sd.inSet = false
		return
	}

	prev := sd
	for prev.next != sd {
		prev = prev.next
	}
	prev.next = sd.next
	if set.head == sd {
		set.head = sd.next
	}
	if set.cursor == sd {
		set.cursor = sd.next
	}
	sd.next = nil
	sd.inSet = false
	set.count--
}
