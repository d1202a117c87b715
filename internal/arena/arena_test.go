// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package arena_test

import (
	"errors"
	"sync"
	"testing"

	"code.hybscloud.com/lpel/internal/arena"
)

func TestArenaAllocFreeReuse(t *testing.T) {
	a := arena.New[int](4)
	if a.Cap() != 4 {
		t.Fatalf("Cap: got %d, want 4", a.Cap())
	}

	handles := make([]uint64, 4)
	for i := range handles {
		p, h, err := a.Alloc()
		if err != nil {
			t.Fatalf("Alloc(%d): %v", i, err)
		}
		*p = i + 1
		handles[i] = h
	}

	if _, _, err := a.Alloc(); !errors.Is(err, arena.ErrExhausted) {
		t.Fatalf("Alloc on full arena: got %v, want ErrExhausted", err)
	}

	a.Free(handles[1])
	p, h, err := a.Alloc()
	if err != nil {
		t.Fatalf("Alloc after Free: %v", err)
	}
	if h != handles[1] {
		t.Fatalf("Alloc after Free: got handle %d, want %d", h, handles[1])
	}
	if *p != 0 {
		t.Fatalf("Alloc after Free: slot not zeroed, got %d", *p)
	}
}

func TestArenaConcurrentAllocFree(t *testing.T) {
	const n = 64
	a := arena.New[int](n)

	var wg sync.WaitGroup
	handles := make(chan uint64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, h, err := a.Alloc()
			if err != nil {
				t.Errorf("Alloc: %v", err)
				return
			}
			handles <- h
		}()
	}
	wg.Wait()
	close(handles)

	seen := make(map[uint64]bool)
	for h := range handles {
		if seen[h] {
			t.Fatalf("handle %d allocated twice", h)
		}
		seen[h] = true
	}
	if len(seen) != n {
		t.Fatalf("got %d distinct handles, want %d", len(seen), n)
	}
}
