// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lpel

import (
	"context"

	"code.hybscloud.com/lpel/internal/arena"
	"code.hybscloud.com/lpel/internal/ring"
	"code.hybscloud.com/lpel/mon"
	"code.hybscloud.com/lpel/sched"
)

// Runtime owns the fixed-capacity arenas Stream and Descriptor values
// are allocated from, the Scheduler tasks suspend against, and the
// default Monitor newly created streams report to. Go has no implicit
// process-wide allocator for fixed-layout objects the way the original
// design assumes one; Runtime is the Go-native place to put it,
// configured the same fluent way the teacher library's own Builder
// configures queue construction.
type Runtime struct {
	streams     *arena.Arena[Stream]
	descriptors *arena.Arena[Descriptor]
	scheduler   sched.Scheduler
	monitor     mon.Monitor
}

type runtimeConfig struct {
	maxStreams     int
	maxDescriptors int
	monitor        mon.Monitor
}

// Option configures a Runtime at construction time.
type Option func(*runtimeConfig)

// WithCapacity overrides the arena sizes used for Stream and
// Descriptor allocation. Exceeding either bound surfaces as
// ErrResourceExhausted from Create/Open rather than an unbounded
// allocation.
func WithCapacity(maxStreams, maxDescriptors int) Option {
	return func(c *runtimeConfig) {
		c.maxStreams = maxStreams
		c.maxDescriptors = maxDescriptors
	}
}

// WithMonitor sets the Monitor newly created streams report to. The
// default is mon.Noop{}.
func WithMonitor(m mon.Monitor) Option {
	return func(c *runtimeConfig) { c.monitor = m }
}

// NewRuntime creates a Runtime backed by scheduler. scheduler is
// typically a *sched.WorkerPool, but any sched.Scheduler works.
func NewRuntime(scheduler sched.Scheduler, opts ...Option) *Runtime {
	cfg := runtimeConfig{
		maxStreams:     DefaultMaxStreams,
		maxDescriptors: DefaultMaxDescriptors,
		monitor:        mon.Noop{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Runtime{
		streams:     arena.New[Stream](cfg.maxStreams),
		descriptors: arena.New[Descriptor](cfg.maxDescriptors),
		scheduler:   scheduler,
		monitor:     cfg.monitor,
	}
}

// Create allocates a new Stream with no bound descriptors. size is
// rounded up to the next power of 2; a size of 0 substitutes
// DefaultStreamCapacity. Returns ErrResourceExhausted if the Runtime's
// stream arena is full.
func (rt *Runtime) Create(size int) (*Stream, error) {
	if size == 0 {
		size = DefaultStreamCapacity
	}
	s, handle, err := rt.streams.Alloc()
	if err != nil {
		return nil, ErrResourceExhausted
	}
	*s = Stream{
		buffer:  ring.New(size),
		uid:     newUID(),
		handle:  handle,
		sched:   rt.scheduler,
		monitor: rt.monitor,
	}
	s.eSem.StoreRelaxed(int64(s.buffer.Cap()))
	return s, nil
}

// Destroy releases s back to the Runtime's arena. Precondition: s must
// have no bound descriptors (Close both ends first). Violating this is
// a programming error and panics.
func (rt *Runtime) Destroy(s *Stream) {
	if s.consSD != nil || s.prodSD != nil {
		precondition("Destroy", "stream still has a bound descriptor")
	}
	rt.streams.Free(s.handle)
}

// Open binds a Descriptor for mode onto s, owned by the task Self
// resolves from ctx. Precondition: s must not already have a bound
// descriptor for mode — at most one reader and one writer may be open
// on a stream at a time. Violating this is a programming error and
// panics. Returns ErrResourceExhausted if the Runtime's descriptor
// arena is full.
func (rt *Runtime) Open(ctx context.Context, s *Stream, mode Mode) (*Descriptor, error) {
	switch mode {
	case Read:
		if s.consSD != nil {
			precondition("Open", "stream already has a bound read descriptor")
		}
	case Write:
		if s.prodSD != nil {
			precondition("Open", "stream already has a bound write descriptor")
		}
	}

	task := rt.scheduler.Self(ctx)
	d, handle, err := rt.descriptors.Alloc()
	if err != nil {
		return nil, ErrResourceExhausted
	}
	*d = Descriptor{task: task, stream: s, mode: mode, handle: handle}

	switch mode {
	case Read:
		s.consSD = d
	case Write:
		s.prodSD = d
	}
	s.monitor.StreamOpen(s.uid, mode, task.ID())
	return d, nil
}

// Close unbinds sd from its stream and releases it back to the
// Runtime's descriptor arena. If destroy is true the stream itself is
// also destroyed, which requires the other end to already be closed
// (see Destroy's precondition).
//
// Precondition: no task may be blocked on sd's stream via the end sd
// represents at the moment of Close (spec.md §4.6). Nothing here can
// check that cheaply without extra bookkeeping on every Read/Write, so
// it is left as a caller obligation, exactly like the original design.
func (rt *Runtime) Close(sd *Descriptor, destroy bool) {
	s := sd.stream
	switch sd.mode {
	case Read:
		s.consSD = nil
	case Write:
		s.prodSD = nil
	}
	s.monitor.StreamClose(s.uid, sd.mode, sd.task.ID(), destroy)
	rt.descriptors.Free(sd.handle)
	if destroy {
		rt.Destroy(s)
	}
}

// Replace atomically rebinds a read-mode descriptor from its current
// stream to snew, destroying the old stream in the process. This is
// the operation a task uses to splice itself onto a different stream
// without losing its place in any Set it belongs to (see set.go).
//
// Preconditions, both programming errors if violated: sd must be a
// read-mode descriptor; the old stream must have no bound write-mode
// descriptor (spec.md's Open Question about Replace's missing
// precondition check — resolved here by requiring the producer side
// closed first, the same rule Destroy already enforces); snew must not
// already have a bound read-mode descriptor.
func (rt *Runtime) Replace(sd *Descriptor, snew *Stream) {
	if sd.mode != Read {
		precondition("Replace", "descriptor must be read-mode")
	}
	old := sd.stream
	if old.prodSD != nil {
		precondition("Replace", "old stream still has a bound write descriptor")
	}
	if snew.consSD != nil {
		precondition("Replace", "new stream already has a bound read descriptor")
	}

	s := old
	s.monitor.StreamReplace(old.uid, snew.uid, sd.task.ID())
	s.consSD = nil
	rt.Destroy(old)

	snew.consSD = sd
	sd.stream = snew
}
