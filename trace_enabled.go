// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build synqtrace

package synqueue

import (
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// logifaceTracer emits Trace-level structured events for every CAS retry and
// every spin-to-yield stall, via the teacher ecosystem's logging facade.
// Only compiled in when the synqtrace build tag is set; the default build
// links trace_disabled.go instead.
type logifaceTracer struct {
	log *logiface.Logger[*stumpy.Event]
}

func (t logifaceTracer) retry(algo, phase string, index uint32) {
	t.log.Trace().
		Str(`algo`, algo).
		Str(`phase`, phase).
		Uint64(`index`, uint64(index)).
		Log(`cas retry`)
}

func (t logifaceTracer) stall(algo, phase string, index uint32) {
	t.log.Trace().
		Str(`algo`, algo).
		Str(`phase`, phase).
		Uint64(`index`, uint64(index)).
		Log(`yielded: waiting on opposite side`)
}

var defaultTracer tracer = logifaceTracer{
	log: stumpy.L.New(stumpy.L.WithStumpy()),
}
