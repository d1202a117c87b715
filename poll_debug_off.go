// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !lpel_debug

package lpel

// debugAssertDisarmed is a no-op outside the lpel_debug build tag.
func debugAssertDisarmed(set *Set) {}
