// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !synqtrace

package synqueue

// noopTracer discards every event. It is the default build's tracer, so the
// hot path costs nothing beyond a direct (inlined) no-op call.
type noopTracer struct{}

func (noopTracer) retry(algo, phase string, index uint32) {}
func (noopTracer) stall(algo, phase string, index uint32) {}

var defaultTracer noopTracer
