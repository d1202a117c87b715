// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package cacheline holds the small layout helpers shared by every
// lock-free structure in the module: cache-line padding types and the
// power-of-2 rounding used to size ring buffers.
package cacheline

import "unsafe"

// Pad is cache line padding to prevent false sharing between fields on
// either side of it.
type Pad [64]byte

// PadShort pads out a cache line after an 8-byte field.
type PadShort [64 - 8]byte

// PadPtr pads out a cache line after a pointer-sized field.
type PadPtr [64 - PtrSize]byte

// PtrSize is the size of a pointer in bytes on the target platform.
const PtrSize = int(unsafe.Sizeof(uintptr(0)))

// RoundToPow2 rounds n up to the next power of 2, with a floor of 2.
func RoundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
