// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lpel

import "code.hybscloud.com/lpel/sched"

// Poll waits for the first descriptor in set with data available and
// returns it, rotating set so the next Poll starts immediately after
// the winner — a best-effort round-robin fairness, not a hard
// guarantee (spec.md §5). Poll never returns an error; set must be
// non-empty, or it panics.
//
// The algorithm arms the owning task's poll token, scans set once
// looking for a stream that already has data, and — if none did —
// blocks until a producer's Write wins the race to hand the token
// back. Either way, at most one of "Poll's own scan" and "a producer's
// Write" ever consumes the token: SwapAcqRel(0) is an exchange, not a
// CAS loop, so whichever side observes the old value 1 is the sole
// winner (spec.md §9, "poll token as single-wakeup arbiter").
func Poll(set *Set) *Descriptor {
	if set.head == nil {
		precondition("Poll", "set must not be empty")
	}
	task := set.task
	task.PollToken().StoreRelease(1)

	var wakeupSD *Descriptor
	shortCircuited := false
	armed := 0

	cur := set.cursor
	for i := 0; i < set.count; i++ {
		sd := cur
		s := sd.stream
		s.prodLock.Lock()
		if s.buffer.Top() != nil {
			won := task.PollToken().SwapAcqRel(0) == 1
			s.prodLock.Unlock()
			if won {
				wakeupSD = sd
				shortCircuited = true
			}
			break
		}
		s.isPoll = true
		armed++
		s.prodLock.Unlock()
		cur = cur.next
	}

	if !shortCircuited {
		set.scheduler.Block(task, sched.BlockedOnAnyIn)
		if got, ok := task.WakeupSD().(*Descriptor); ok {
			wakeupSD = got
		}
	}

	// Disarm pass: clear is_poll on every stream this scan armed. They
	// are exactly the first armed entries starting at the original
	// cursor, since only the owning task ever mutates this set and no
	// stream is armed twice in one Poll call. A producer may already have
	// cleared is_poll on one of them while handing over the token.
	cur = set.cursor
	for remaining := armed; remaining > 0; remaining-- {
		s := cur.stream
		s.prodLock.Lock()
		s.isPoll = false
		s.prodLock.Unlock()
		cur = cur.next
	}

	debugAssertDisarmed(set)

	set.cursor = wakeupSD.next
	return wakeupSD
}
