// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sched declares the scheduler contracts the stream core
// consumes (Self/Block/Unblock, and the per-task fields Read/Write/Poll
// touch) and ships one reference implementation, WorkerPool, good
// enough to exercise and test the stream core end to end.
//
// Task creation, stacks, and register-level context switching stay out
// of scope, exactly as spec.md's §1 draws the line: a "task" here is
// simply whatever the Scheduler hands back from Self, and blocking is
// whatever Block/Unblock make of it.
package sched

import (
	"context"

	"code.hybscloud.com/atomix"
)

// BlockReason is why the calling task is about to suspend.
type BlockReason int

const (
	BlockedOnInput BlockReason = iota
	BlockedOnOutput
	BlockedOnAnyIn
)

func (r BlockReason) String() string {
	switch r {
	case BlockedOnInput:
		return "blocked-on-input"
	case BlockedOnOutput:
		return "blocked-on-output"
	case BlockedOnAnyIn:
		return "blocked-on-any-in"
	default:
		return "blocked-unknown"
	}
}

// Task is the per-task state the stream core reads and writes directly,
// per spec.md §6: an atomic poll token arbitrating a single poll wakeup,
// and a wakeup slot recording which descriptor caused the task's most
// recent wakeup. Everything else about a task (its stack, its own
// business logic) is the scheduler's business, not the stream core's.
type Task interface {
	// ID is a stable, process-unique identifier, useful for monitoring.
	ID() uint64

	// PollToken is the atomic 0/1 flag arbitrating Poll's single wakeup
	// (spec.md §4.5, §9 "poll token as single-wakeup arbiter"). The
	// stream core exchanges it with SwapAcqRel; it never loops on CAS.
	PollToken() *atomix.Uint32

	// SetWakeupSD/WakeupSD carry the descriptor that last woke this
	// task. The value is opaque here (an any holding a
	// *lpel.Descriptor) because sched cannot import the stream package
	// without an import cycle; the stream package is the only reader.
	SetWakeupSD(sd any)
	WakeupSD() any
}

// Scheduler is the external collaborator the stream core suspends
// against. Implementations must guarantee: Block returns only after a
// matching Unblock(_, self) has been observed, and Unblock never
// preempts the calling goroutine.
type Scheduler interface {
	// Self returns the task bound to ctx — the Go-native substitute for
	// the original's implicit per-OS-thread "current task" lookup,
	// since a goroutine has no addressable thread-local storage. A
	// Scheduler implementation binds a Task into the context once, when
	// it starts the task's goroutine (see WorkerPool.Spawn).
	Self(ctx context.Context) Task

	// Block transitions task to Blocked(reason) and returns only once
	// some other goroutine has called Unblock(_, task).
	Block(task Task, reason BlockReason)

	// Unblock marks target Ready without preempting caller. Safe to
	// call from any goroutine, including target's own peer stream.
	Unblock(caller, target Task)
}
