// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sched

import (
	"context"
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"

	"code.hybscloud.com/lpel/internal/mpmcq"
)

// WorkerPool is a goroutine-based reference Scheduler. It bounds how
// many task bodies may run concurrently to a fixed number of slots —
// the Go-native stand-in for a small pool of worker threads pinned to
// CPUs, without reimplementing stackful task switching (out of scope
// per spec.md §1: CPU pinning and context-switch mechanics are left to
// the host runtime). Once a task's goroutine blocks inside Read, Write,
// or Poll, it genuinely parks — Go's own runtime, not WorkerPool, is
// what frees the underlying OS thread to run other goroutines, exactly
// as the original scheduler would free a worker thread when a task
// stack parks.
//
// The free-slot pool is the teacher's MPMC algorithm (internal/mpmcq),
// repurposed from "bounded queue of data items" to "bounded pool of
// admission tokens" — Spawn and a finishing task's goroutine are both
// many-sided (any number of Spawn callers, any number of finishing
// tasks), which is exactly the MPMC shape.
type WorkerPool struct {
	slots  *mpmcq.Queue[struct{}]
	nextID atomix.Uint64
	wg     sync.WaitGroup
}

// NewWorkerPool creates a pool admitting up to workers concurrently
// running task bodies.
func NewWorkerPool(workers int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	p := &WorkerPool{slots: mpmcq.New[struct{}](workers)}
	for i := 0; i < workers; i++ {
		if err := p.slots.Push(struct{}{}); err != nil {
			panic("lpel: sched: unreachable slot-pool overflow during init")
		}
	}
	return p
}

type workerTask struct {
	id         uint64
	pollToken  atomix.Uint32
	wakeupSD   any
	park       chan struct{} // capacity 1: at most one outstanding wakeup
	lastReason atomix.Uint32
}

func (t *workerTask) ID() uint64                  { return t.id }
func (t *workerTask) PollToken() *atomix.Uint32   { return &t.pollToken }
func (t *workerTask) SetWakeupSD(sd any)          { t.wakeupSD = sd }
func (t *workerTask) WakeupSD() any               { return t.wakeupSD }
func (t *workerTask) LastBlockReason() BlockReason { return BlockReason(t.lastReason.LoadAcquire()) }

type taskCtxKey struct{}

// Spawn starts fn on a new goroutine once a slot is free, binding a
// fresh Task into the context fn receives. The caller waits in Spawn
// until a slot is free. The returned Task is stable for the task's
// whole lifetime and is the same Task that Self returns for the
// context fn receives (the context lpel's Runtime.Open and NewSet take).
func (p *WorkerPool) Spawn(fn func(ctx context.Context, self Task)) Task {
	p.acquireSlot()

	t := &workerTask{
		id:   p.nextID.AddAcqRel(1),
		park: make(chan struct{}, 1),
	}
	ctx := context.WithValue(context.Background(), taskCtxKey{}, Task(t))

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer func() {
			if err := p.slots.Push(struct{}{}); err != nil {
				panic("lpel: sched: unreachable slot-pool overflow on release")
			}
		}()
		fn(ctx, t)
	}()
	return t
}

// Wait blocks until every spawned task has returned. Useful in tests
// and short-lived programs; long-running servers typically never call
// it.
func (p *WorkerPool) Wait() { p.wg.Wait() }

func (p *WorkerPool) acquireSlot() {
	sw := spin.Wait{}
	for {
		if _, err := p.slots.Pop(); err == nil {
			return
		}
		sw.Once()
	}
}

// Self returns the Task bound into ctx by Spawn.
func (p *WorkerPool) Self(ctx context.Context) Task {
	t, _ := ctx.Value(taskCtxKey{}).(Task)
	return t
}

// Block parks the calling goroutine until Unblock(_, task) is called.
func (p *WorkerPool) Block(task Task, reason BlockReason) {
	wt := task.(*workerTask)
	wt.lastReason.StoreRelease(uint32(reason))
	<-wt.park
}

// Unblock wakes target without blocking or preempting caller. At most
// one outstanding wakeup is ever valid for a task under the stream
// protocol's single-blocked-peer invariant; a second concurrent
// Unblock on an already-pending wakeup is a caller protocol violation,
// not something WorkerPool silently queues.
func (p *WorkerPool) Unblock(caller, target Task) {
	wt := target.(*workerTask)
	select {
	case wt.park <- struct{}{}:
	default:
		panic("lpel: sched: duplicate Unblock on task with a pending wakeup")
	}
}
