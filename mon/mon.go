// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mon declares the monitoring hooks the stream core calls and
// ships two implementations: Noop (the zero-cost default) and LogSink
// (an async, never-blocks-the-caller sink for production use).
package mon

import "code.hybscloud.com/lpel/sched"

// Mode identifies which end of a stream a descriptor binds to. It lives
// here, not in the root package, so mon stays free to import: the root
// package aliases it as lpel.Mode.
type Mode int

const (
	ModeRead Mode = iota
	ModeWrite
)

func (m Mode) String() string {
	if m == ModeWrite {
		return "write"
	}
	return "read"
}

// Monitor is the set of pure observation hooks spec.md §6 requires.
// Every method must be cheap and must never panic; implementations are
// called with no stream lock held, so they are free to do their own
// (non-blocking) synchronization.
type Monitor interface {
	StreamOpen(streamID uint64, mode Mode, taskID uint64)
	StreamClose(streamID uint64, mode Mode, taskID uint64, destroyed bool)
	StreamReplace(oldStreamID, newStreamID uint64, taskID uint64)
	StreamBlockon(streamID uint64, taskID uint64, reason sched.BlockReason)
	StreamWakeup(streamID uint64, taskID uint64)
	StreamMoved(streamID uint64, taskID uint64)
}

// Noop implements Monitor with empty, inlinable methods. It is the
// default when a caller does not supply a Monitor.
type Noop struct{}

func (Noop) StreamOpen(uint64, Mode, uint64)                    {}
func (Noop) StreamClose(uint64, Mode, uint64, bool)             {}
func (Noop) StreamReplace(uint64, uint64, uint64)               {}
func (Noop) StreamBlockon(uint64, uint64, sched.BlockReason)     {}
func (Noop) StreamWakeup(uint64, uint64)                        {}
func (Noop) StreamMoved(uint64, uint64)                         {}

var _ Monitor = Noop{}
