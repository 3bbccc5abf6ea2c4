// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package synqueue

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// Double is a bounded MPMC queue that splits head/tail tracking into two
// packed state words, wide and narrow. Push reserves a slot by advancing
// wide.head and, once the value is written, advances narrow.head. Pop
// reserves a slot by advancing narrow.tail and, once the value is read,
// advances wide.tail. Each catch-up step spins until every earlier
// reservation on the same side has caught up.
type Double[T any] struct {
	_        pad
	wide     atomix.Uint64
	_        padShort
	narrow   atomix.Uint64
	_        padShort
	ring     ring[T]
	capacity int
}

// NewDouble creates a Double queue able to hold up to capacity elements.
// Panics if capacity < 1.
func NewDouble[T any](capacity int, opts ...Option[T]) *Double[T] {
	if capacity < 1 {
		panic("synqueue: capacity must be >= 1")
	}
	o := buildOptions(opts)
	return &Double[T]{
		ring:     newRing[T](capacity, o.onDrop),
		capacity: capacity,
	}
}

// Push transfers value into the queue. Returns ErrWouldBlock if full.
func (q *Double[T]) Push(value T) error {
	// Phase 1: reserve a slot by advancing wide.head.
	sw := spin.Wait{}
	rawWide := q.wide.LoadAcquire()
	var index uint32
	for {
		w := unpackState(rawWide)
		next := q.ring.advance(w.head)
		if next == w.tail {
			return ErrWouldBlock
		}

		index = w.head
		if q.wide.CompareAndSwapAcqRel(rawWide, w.withHead(next).pack()) {
			break
		}
		defaultTracer.retry("double", "push-reserve", index)
		rawWide = q.wide.LoadAcquire()
		sw.Once()
	}

	// Phase 2: write the value into the reserved slot.
	q.ring.store(index, value)

	// Phase 3: catch up narrow.head to reflect the now-readable slot. Only
	// the producer whose reservation immediately precedes narrow.head may
	// advance it; others spin until that producer finishes.
	sw = spin.Wait{}
	for {
		rawNarrow := q.narrow.LoadAcquire()
		n := unpackState(rawNarrow)
		if n.head != index {
			defaultTracer.stall("double", "push-catchup", index)
			sw.Once()
			continue
		}
		next := q.ring.advance(n.head)
		if q.narrow.CompareAndSwapAcqRel(rawNarrow, n.withHead(next).pack()) {
			return nil
		}
		sw.Once()
	}
}

// Pop removes and returns the oldest value in the queue. Returns the zero
// value and ErrWouldBlock if the queue is logically empty.
func (q *Double[T]) Pop() (T, error) {
	// Phase 1: reserve a slot by advancing narrow.tail.
	sw := spin.Wait{}
	rawNarrow := q.narrow.LoadAcquire()
	var index uint32
	for {
		n := unpackState(rawNarrow)
		if n.tail == n.head {
			var zero T
			return zero, ErrWouldBlock
		}

		index = n.tail
		next := q.ring.advance(n.tail)
		if q.narrow.CompareAndSwapAcqRel(rawNarrow, n.withTail(next).pack()) {
			break
		}
		defaultTracer.retry("double", "pop-reserve", index)
		rawNarrow = q.narrow.LoadAcquire()
		sw.Once()
	}

	// Phase 2: read the value out of the reserved slot.
	value := q.ring.take(index)

	// Phase 3: catch up wide.tail to reflect the now-free slot.
	sw = spin.Wait{}
	for {
		rawWide := q.wide.LoadAcquire()
		w := unpackState(rawWide)
		if w.tail != index {
			defaultTracer.stall("double", "pop-catchup", index)
			sw.Once()
			continue
		}
		next := q.ring.advance(w.tail)
		if q.wide.CompareAndSwapAcqRel(rawWide, w.withTail(next).pack()) {
			return value, nil
		}
		sw.Once()
	}
}

// IsEmpty is a best-effort, racy observation of queue occupancy.
func (q *Double[T]) IsEmpty() bool {
	n := unpackState(q.narrow.LoadAcquire())
	return n.head == n.tail
}

// Cap returns the usable capacity.
func (q *Double[T]) Cap() int {
	return q.capacity
}

// Close drains every slot still holding a value, invoking the configured
// drop hook once per element. Single-owner: must not race with Push/Pop.
//
// wide and narrow must agree once all Push/Pop calls have quiesced; a
// mismatch means a reservation never caught up, which is a programming
// error, not a runtime possibility.
func (q *Double[T]) Close() {
	w := unpackState(q.wide.LoadAcquire())
	n := unpackState(q.narrow.LoadAcquire())
	debugAssert(w == n, "double: wide and narrow disagree at close")
	q.ring.drain(n.tail, n.head)
}
