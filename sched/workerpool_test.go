// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sched_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/lpel/sched"
)

func TestWorkerPoolSelfReturnsBoundTask(t *testing.T) {
	pool := sched.NewWorkerPool(2)
	ids := make(chan uint64, 2)

	for i := 0; i < 2; i++ {
		pool.Spawn(func(ctx context.Context, self sched.Task) {
			self2 := pool.Self(ctx)
			if self2.ID() != self.ID() {
				t.Errorf("Self(ctx) returned a different task than Spawn handed back")
			}
			ids <- self.ID()
		})
	}
	pool.Wait()
	close(ids)

	seen := map[uint64]bool{}
	for id := range ids {
		if seen[id] {
			t.Fatalf("task ID %d reused concurrently", id)
		}
		seen[id] = true
	}
}

func TestWorkerPoolBlockUnblock(t *testing.T) {
	pool := sched.NewWorkerPool(1)
	ready := make(chan sched.Task, 1)
	woke := make(chan struct{})

	task := pool.Spawn(func(ctx context.Context, self sched.Task) {
		ready <- self
		pool.Block(self, sched.BlockedOnInput)
		close(woke)
	})

	blocked := <-ready
	if blocked.ID() != task.ID() {
		t.Fatalf("ready task ID: got %d, want %d", blocked.ID(), task.ID())
	}

	pool.Unblock(nil, task)

	select {
	case <-woke:
	case <-time.After(2 * time.Second):
		t.Fatalf("task did not wake up after Unblock")
	}
}

func TestWorkerPoolDuplicateUnblockPanics(t *testing.T) {
	pool := sched.NewWorkerPool(1)
	parked := make(chan sched.Task, 1)
	release := make(chan struct{})

	pool.Spawn(func(ctx context.Context, self sched.Task) {
		parked <- self
		<-release
		pool.Block(self, sched.BlockedOnOutput) // consumes the pending wakeup
	})
	target := <-parked

	pool.Unblock(nil, target) // stays pending: the task has not blocked yet

	defer func() {
		close(release)
		if recover() == nil {
			t.Fatalf("second Unblock on a task with a pending wakeup: want panic, got none")
		}
	}()
	pool.Unblock(nil, target)
}

func TestWorkerPoolBoundsConcurrency(t *testing.T) {
	const workers = 2
	pool := sched.NewWorkerPool(workers)

	var running, maxRunning int
	var mu sync.Mutex
	release := make(chan struct{})
	spawned := make(chan struct{})

	// Spawn waits in the caller for a free slot, so spawn from a separate
	// goroutine while the first tasks hold both slots.
	go func() {
		defer close(spawned)
		for i := 0; i < workers*3; i++ {
			pool.Spawn(func(ctx context.Context, self sched.Task) {
				mu.Lock()
				running++
				if running > maxRunning {
					maxRunning = running
				}
				mu.Unlock()

				<-release

				mu.Lock()
				running--
				mu.Unlock()
			})
		}
	}()

	time.Sleep(50 * time.Millisecond)
	close(release)
	<-spawned
	pool.Wait()

	if maxRunning > workers {
		t.Fatalf("maxRunning = %d, want <= %d", maxRunning, workers)
	}
}
