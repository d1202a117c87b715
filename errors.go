// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lpel

import (
	"errors"
	"fmt"

	"code.hybscloud.com/iox"
)

// ErrFull is returned by TryWrite when a stream's buffer has no room.
// It is a control flow signal, not a failure — an alias for
// [iox.ErrWouldBlock] for ecosystem consistency, the same way the
// teacher library aliases its own queues' full/empty signal.
var ErrFull = iox.ErrWouldBlock

// ErrResourceExhausted is returned by Create and Open when the
// Runtime's backing arena has no free slot left. Unlike ErrFull it is
// not a per-operation backpressure signal: it means the Runtime itself
// was sized too small for the workload.
var ErrResourceExhausted = errors.New("lpel: resource exhausted")

// IsFull reports whether err indicates an operation could not proceed
// because a buffer was full. Delegates to [iox.IsWouldBlock] for
// wrapped error support.
func IsFull(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal rather than a
// failure. Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition
// (nil or ErrFull). Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}

// PreconditionError reports a caller protocol violation: one of
// spec.md's "Violation is a programming error" preconditions (binding
// a second reader, Replace-ing a stream with a live producer, and so
// on). Operations that can fail this way panic with *PreconditionError
// rather than returning an error — these are bugs in the calling task,
// not conditions a well-behaved caller should branch on.
type PreconditionError struct {
	Op  string
	Msg string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("lpel: %s: %s", e.Op, e.Msg)
}

func precondition(op, msg string) {
	panic(&PreconditionError{Op: op, Msg: msg})
}
