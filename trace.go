// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package synqueue

// tracer is the seam tracing hooks are routed through. It exists so that
// CAS retries, bitmap waits, and catch-up stalls can be observed without
// the hot path paying for a disabled logger. See trace_enabled.go (build
// tag synqtrace) and trace_disabled.go (default) for the two backings.
type tracer interface {
	retry(algo, phase string, index uint32)
	stall(algo, phase string, index uint32)
}
