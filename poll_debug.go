// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build lpel_debug

package lpel

// debugAssertDisarmed walks the whole set a second time and panics if
// any stream still has is_poll set, catching a disarm-pass bug that a
// race-free run would otherwise hide. Built only under the lpel_debug
// tag since the extra walk costs a lock acquisition per member stream.
func debugAssertDisarmed(set *Set) {
	cur := set.head
	for i := 0; i < set.count; i++ {
		s := cur.stream
		s.prodLock.Lock()
		armed := s.isPoll
		s.prodLock.Unlock()
		if armed {
			precondition("Poll", "is_poll still set after disarm pass")
		}
		cur = cur.next
	}
}
