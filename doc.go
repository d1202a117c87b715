// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package lpel provides the stream communication core of a light-weight
// cooperative task execution layer: bounded, single-producer/
// single-consumer streams with blocking Read/Write, non-blocking
// TryWrite, and a Poll operation for multiplexing a consumer across
// several streams.
//
// # Quick Start
//
//	pool := sched.NewWorkerPool(4)
//	rt := lpel.NewRuntime(pool)
//
//	s, err := rt.Create(1024)
//	if err != nil {
//	    // ErrResourceExhausted: Runtime's stream arena is full
//	}
//
//	pool.Spawn(func(ctx context.Context, self sched.Task) {
//	    wsd, err := rt.Open(ctx, s, lpel.Write)
//	    if err != nil {
//	        return
//	    }
//	    defer rt.Close(wsd, false)
//
//	    v := 42
//	    wsd.Write(unsafe.Pointer(&v))
//	})
//
//	pool.Spawn(func(ctx context.Context, self sched.Task) {
//	    rsd, err := rt.Open(ctx, s, lpel.Read)
//	    if err != nil {
//	        return
//	    }
//	    defer rt.Close(rsd, true)
//
//	    item := rsd.Read()
//	    v := (*int)(item)
//	    _ = v
//	})
//
//	pool.Wait()
//
// # Design
//
// A Stream is a bounded ring buffer (internal/ring) paired with a
// counting coordinator: two signed counters, n_sem and e_sem, that
// each carry a second bit of meaning in their sign — "the peer on the
// other end is currently parked". Read decrements n_sem and blocks iff
// the result is -1; Write decrements e_sem the same way. Whichever side
// observes the -1..0 transition on the *other* counter after making
// its own move is responsible for waking the peer. This single
// decrement-then-test idiom, with no separate flag, is the whole of the
// synchronization strategy other than Poll's token handoff (see Poll's
// doc comment); Read takes no lock, while Write takes the stream's
// prodLock around each Put so the handoff can be checked.
//
// Streams and Descriptors are allocated from fixed-capacity arenas
// (internal/arena) owned by a Runtime, not individually heap-allocated
// and GC'd one at a time — exhausting an arena is how
// ErrResourceExhausted models allocation failure in a language with no
// explicit alloc-failure return.
//
// Task creation, stacks, and register-level context switching are out
// of scope: a "task" here is simply whatever a sched.Scheduler hands
// back from Self, and blocking is whatever its Block/Unblock make of
// it. sched.WorkerPool is a reference Scheduler good enough to exercise
// and test the stream core; production code is expected to supply its
// own, wired into whatever cooperative scheduler it already has.
//
// # Monitoring
//
// A Runtime's Monitor hooks (package mon) observe every stream open,
// close, replace, block, wakeup, and move, off the hot path — mon.Noop
// is free, mon.LogSink is an async sink good enough for production use.
//
// # Error Handling
//
// Read, Write, and Poll never return errors: the only way they can
// fail to make immediate progress is by blocking, which the scheduler
// resolves, not a caller. Create, Open, and TryWrite return errors;
// ErrFull (an alias of [iox.ErrWouldBlock], for ecosystem consistency)
// and ErrResourceExhausted are the only two. Violating a documented
// precondition — binding a second descriptor to an end that already
// has one, Destroy-ing a stream with a bound descriptor, Replace-ing
// onto or off of a stream with the wrong end still bound — is a
// programming error and panics with *PreconditionError rather than
// returning an error a well-behaved caller would need to branch on.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit
// memory ordering, and [code.hybscloud.com/spin] (via its internal
// queue packages) for CPU pause instructions during backoff.
package lpel
