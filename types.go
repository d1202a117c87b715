// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lpel

import (
	"code.hybscloud.com/atomix"

	"code.hybscloud.com/lpel/mon"
)

// Mode identifies which end of a stream a Descriptor binds to.
type Mode = mon.Mode

const (
	Read  = mon.ModeRead
	Write = mon.ModeWrite
)

// DefaultStreamCapacity is substituted by Create when the caller asks
// for size 0.
const DefaultStreamCapacity = 64

// Default arena sizes for NewRuntime when the caller does not supply
// WithCapacity.
const (
	DefaultMaxStreams     = 4096
	DefaultMaxDescriptors = 8192
)

var nextUID atomix.Uint64

// newUID hands out process-unique identifiers for streams, used only
// for monitoring and diagnostics — never for addressing.
func newUID() uint64 {
	return nextUID.AddAcqRel(1)
}
