// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mon

import (
	"fmt"
	"io"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"

	"code.hybscloud.com/lpel/internal/mpscq"
	"code.hybscloud.com/lpel/sched"

	"github.com/agilira/lethe"
)

type eventKind int

const (
	evOpen eventKind = iota
	evClose
	evReplace
	evBlockon
	evWakeup
	evMoved
)

type event struct {
	kind      eventKind
	at        time.Time
	streamID  uint64
	otherID   uint64 // StreamReplace's new stream id
	taskID    uint64
	mode      Mode
	reason    sched.BlockReason
	destroyed bool
}

// LogSink is an async Monitor: hook calls only push an event onto a
// bounded MPSC queue (many stream goroutines are producers, one
// dedicated drain goroutine is the consumer — the teacher's MPSC queue
// shape exactly) and return immediately. A full queue drops the event
// rather than block the caller, since spec.md §5 requires monitoring
// hooks to never hold up the stream they are observing.
type LogSink struct {
	q       *mpscq.Queue[event]
	w       io.Writer
	closed  atomix.Bool
	stopped chan struct{}
}

// NewLogSink starts a LogSink writing formatted lines to w. queueCap is
// rounded up to a power of 2 by the underlying queue.
func NewLogSink(w io.Writer, queueCap int) *LogSink {
	s := &LogSink{
		q:       mpscq.New[event](queueCap),
		w:       w,
		stopped: make(chan struct{}),
	}
	go s.run()
	return s
}

// NewFileSink is NewLogSink wired to a rotating log file via
// github.com/agilira/lethe instead of a hand-rolled rotating writer.
func NewFileSink(filename string, queueCap int) *LogSink {
	logger := &lethe.Logger{
		Filename:   filename,
		MaxSizeStr: "100MB",
		MaxBackups: 5,
		Compress:   true,
	}
	return NewLogSink(logger, queueCap)
}

// Close stops the drain goroutine once the queue has been fully
// flushed. Further hook calls after Close are silently dropped.
func (s *LogSink) Close() error {
	s.closed.StoreRelease(true)
	<-s.stopped
	if closer, ok := s.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (s *LogSink) run() {
	defer close(s.stopped)
	sw := spin.Wait{}
	for {
		ev, err := s.q.Pop()
		if err == nil {
			s.writeEvent(ev)
			sw = spin.Wait{}
			continue
		}
		if s.closed.LoadAcquire() {
			for {
				ev, err := s.q.Pop()
				if err != nil {
					return
				}
				s.writeEvent(ev)
			}
		}
		sw.Once()
	}
}

func (s *LogSink) push(ev event) {
	ev.at = time.Now()
	if s.closed.LoadAcquire() {
		return
	}
	_ = s.q.Push(ev) // full queue: drop rather than block the hot path
}

func (s *LogSink) writeEvent(ev event) {
	var line string
	switch ev.kind {
	case evOpen:
		line = fmt.Sprintf("%s stream_open stream=%d mode=%s task=%d\n", ev.at.Format(time.RFC3339Nano), ev.streamID, ev.mode, ev.taskID)
	case evClose:
		line = fmt.Sprintf("%s stream_close stream=%d mode=%s task=%d destroyed=%t\n", ev.at.Format(time.RFC3339Nano), ev.streamID, ev.mode, ev.taskID, ev.destroyed)
	case evReplace:
		line = fmt.Sprintf("%s stream_replace old=%d new=%d task=%d\n", ev.at.Format(time.RFC3339Nano), ev.streamID, ev.otherID, ev.taskID)
	case evBlockon:
		line = fmt.Sprintf("%s stream_blockon stream=%d task=%d reason=%s\n", ev.at.Format(time.RFC3339Nano), ev.streamID, ev.taskID, ev.reason)
	case evWakeup:
		line = fmt.Sprintf("%s stream_wakeup stream=%d task=%d\n", ev.at.Format(time.RFC3339Nano), ev.streamID, ev.taskID)
	case evMoved:
		line = fmt.Sprintf("%s stream_moved stream=%d task=%d\n", ev.at.Format(time.RFC3339Nano), ev.streamID, ev.taskID)
	}
	_, _ = io.WriteString(s.w, line)
}

func (s *LogSink) StreamOpen(streamID uint64, mode Mode, taskID uint64) {
	s.push(event{kind: evOpen, streamID: streamID, mode: mode, taskID: taskID})
}

func (s *LogSink) StreamClose(streamID uint64, mode Mode, taskID uint64, destroyed bool) {
	s.push(event{kind: evClose, streamID: streamID, mode: mode, taskID: taskID, destroyed: destroyed})
}

func (s *LogSink) StreamReplace(oldStreamID, newStreamID uint64, taskID uint64) {
	s.push(event{kind: evReplace, streamID: oldStreamID, otherID: newStreamID, taskID: taskID})
}

func (s *LogSink) StreamBlockon(streamID uint64, taskID uint64, reason sched.BlockReason) {
	s.push(event{kind: evBlockon, streamID: streamID, taskID: taskID, reason: reason})
}

func (s *LogSink) StreamWakeup(streamID uint64, taskID uint64) {
	s.push(event{kind: evWakeup, streamID: streamID, taskID: taskID})
}

func (s *LogSink) StreamMoved(streamID uint64, taskID uint64) {
	s.push(event{kind: evMoved, streamID: streamID, taskID: taskID})
}

var _ Monitor = (*LogSink)(nil)
