// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build race

package synqueue

// RaceEnabled is true when the race detector is active.
// Used by tests to skip concurrent tests for Axel, Double, and Masked,
// which trigger false positives due to cross-variable acquire/release
// memory ordering the race detector cannot observe.
const RaceEnabled = true
