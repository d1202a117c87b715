// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring_test

import (
	"testing"
	"unsafe"

	"code.hybscloud.com/lpel/internal/ring"
)

func TestBufferCapRoundsUpToPow2(t *testing.T) {
	b := ring.New(3)
	if b.Cap() != 4 {
		t.Fatalf("Cap: got %d, want 4", b.Cap())
	}
}

func TestBufferFIFO(t *testing.T) {
	b := ring.New(4)
	vals := []int{10, 20, 30, 40}
	ptrs := make([]unsafe.Pointer, len(vals))
	for i := range vals {
		ptrs[i] = unsafe.Pointer(&vals[i])
	}

	for i, p := range ptrs {
		if !b.IsSpace() {
			t.Fatalf("IsSpace before Put(%d): got false, want true", i)
		}
		b.Put(p)
	}
	if b.IsSpace() {
		t.Fatalf("IsSpace on full buffer: got true, want false")
	}

	for i, want := range ptrs {
		got := b.Top()
		if got != want {
			t.Fatalf("Top(%d): got %v, want %v", i, got, want)
		}
		// Top is idempotent until Pop.
		if got2 := b.Top(); got2 != want {
			t.Fatalf("Top(%d) repeated: got %v, want %v", i, got2, want)
		}
		b.Pop()
	}
	if top := b.Top(); top != nil {
		t.Fatalf("Top on empty buffer: got %v, want nil", top)
	}
}

func TestBufferPanicsOnZeroCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("New(0): want panic, got none")
		}
	}()
	ring.New(0)
}
