// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mon_test

import (
	"bufio"
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/lpel/mon"
	"code.hybscloud.com/lpel/sched"
)

func TestNoopSatisfiesMonitor(t *testing.T) {
	var m mon.Monitor = mon.Noop{}
	m.StreamOpen(1, mon.ModeRead, 1)
	m.StreamClose(1, mon.ModeRead, 1, false)
	m.StreamReplace(1, 2, 1)
	m.StreamBlockon(1, 1, sched.BlockedOnInput)
	m.StreamWakeup(1, 1)
	m.StreamMoved(1, 1)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestLogSinkWritesAndCloses(t *testing.T) {
	var buf syncBuffer
	sink := mon.NewLogSink(&buf, 16)

	sink.StreamOpen(7, mon.ModeWrite, 42)
	sink.StreamWakeup(7, 42)
	sink.StreamClose(7, mon.ModeWrite, 42, true)

	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	sc := bufio.NewScanner(strings.NewReader(buf.String()))
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "stream_open") || !strings.Contains(lines[0], "stream=7") {
		t.Fatalf("line 0: got %q, want stream_open for stream=7", lines[0])
	}
	if !strings.Contains(lines[2], "stream_close") || !strings.Contains(lines[2], "destroyed=true") {
		t.Fatalf("line 2: got %q, want stream_close destroyed=true", lines[2])
	}
}

func TestLogSinkDropsAfterClose(t *testing.T) {
	var buf syncBuffer
	sink := mon.NewLogSink(&buf, 4)
	if err := sink.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	sink.StreamMoved(1, 1)
	time.Sleep(10 * time.Millisecond)
	if buf.String() != "" {
		t.Fatalf("hook call after Close was not dropped: %q", buf.String())
	}
}
