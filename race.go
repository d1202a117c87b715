// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package lpel

// RaceEnabled is true when the race detector is active. The race
// detector cannot observe acquire/release orderings across separate
// atomic variables (see n_sem/e_sem in stream.go); no test in this
// module currently consults this constant.
const RaceEnabled = true
