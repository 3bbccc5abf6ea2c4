// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package synqueue

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

const bitmapWordBits = 64

// Axel is a bounded MPMC queue that decouples slot reservation from slot
// readiness with a side bitmap: one bit per slot, set once the slot's value
// is written and clear once it has been read.
//
// Neither Push nor Pop is wait-free, both spin under contention, but the
// queue is lock-free: at least one caller always makes progress.
type Axel[T any] struct {
	_        pad
	state    atomix.Uint64 // packed (head, tail)
	_        padShort
	occupied []atomix.Uint64 // one bit per slot
	ring     ring[T]
	capacity int
}

// NewAxel creates an Axel queue able to hold up to capacity elements.
// Panics if capacity < 1.
func NewAxel[T any](capacity int, opts ...Option[T]) *Axel[T] {
	if capacity < 1 {
		panic("synqueue: capacity must be >= 1")
	}
	o := buildOptions(opts)
	numWords := 1 + capacity/bitmapWordBits
	return &Axel[T]{
		occupied: make([]atomix.Uint64, numWords),
		ring:     newRing[T](capacity, o.onDrop),
		capacity: capacity,
	}
}

func (q *Axel[T]) bit(index uint32) (word int, mask uint64) {
	return int(index) / bitmapWordBits, 1 << (index % bitmapWordBits)
}

// setBit atomically sets mask in occupied[word], returning the value it held
// immediately before the set.
func (q *Axel[T]) setBit(word int, mask uint64) uint64 {
	sw := spin.Wait{}
	for {
		old := q.occupied[word].LoadAcquire()
		if q.occupied[word].CompareAndSwapAcqRel(old, old|mask) {
			return old
		}
		sw.Once()
	}
}

// clearBit atomically clears mask in occupied[word], returning the value it
// held immediately before the clear.
func (q *Axel[T]) clearBit(word int, mask uint64) uint64 {
	sw := spin.Wait{}
	for {
		old := q.occupied[word].LoadAcquire()
		if q.occupied[word].CompareAndSwapAcqRel(old, old&^mask) {
			return old
		}
		sw.Once()
	}
}

// Push transfers value into the queue. Returns ErrWouldBlock if full.
func (q *Axel[T]) Push(value T) error {
	sw := spin.Wait{}
	raw := q.state.LoadAcquire()
	var index uint32
	for {
		s := unpackState(raw)
		next := q.ring.advance(s.head)
		if next == s.tail {
			return ErrWouldBlock
		}

		index = s.head
		word, mask := q.bit(index)
		occ := q.occupied[word].LoadAcquire()
		if occ&mask == 0 {
			if q.state.CompareAndSwapAcqRel(raw, s.withHead(next).pack()) {
				break
			}
			defaultTracer.retry("axel", "push-reserve", index)
			raw = q.state.LoadAcquire()
		} else {
			// A prior Pop has not finished reading this slot.
			defaultTracer.stall("axel", "push-reserve", index)
			raw = q.state.LoadAcquire()
		}
		sw.Once()
	}

	q.ring.store(index, value)

	word, mask := q.bit(index)
	old := q.setBit(word, mask)
	debugAssert(old&mask == 0, "axel: occupancy bit already set before push release")
	return nil
}

// Pop removes and returns the oldest value in the queue. Returns the zero
// value and ErrWouldBlock if the queue is logically empty.
func (q *Axel[T]) Pop() (T, error) {
	sw := spin.Wait{}
	raw := q.state.LoadAcquire()
	var index uint32
	for {
		s := unpackState(raw)
		if s.head == s.tail {
			var zero T
			return zero, ErrWouldBlock
		}

		index = s.tail
		word, mask := q.bit(index)
		occ := q.occupied[word].LoadAcquire()
		if occ&mask != 0 {
			next := q.ring.advance(s.tail)
			if q.state.CompareAndSwapAcqRel(raw, s.withTail(next).pack()) {
				break
			}
			defaultTracer.retry("axel", "pop-reserve", index)
			raw = q.state.LoadAcquire()
		} else {
			// A prior Push has not finished writing this slot.
			defaultTracer.stall("axel", "pop-reserve", index)
			raw = q.state.LoadAcquire()
		}
		sw.Once()
	}

	value := q.ring.take(index)

	word, mask := q.bit(index)
	old := q.clearBit(word, mask)
	debugAssert(old&mask != 0, "axel: occupancy bit already clear before pop release")
	return value, nil
}

// IsEmpty is a best-effort, racy observation of queue occupancy.
func (q *Axel[T]) IsEmpty() bool {
	s := unpackState(q.state.LoadAcquire())
	return s.head == s.tail
}

// Cap returns the usable capacity.
func (q *Axel[T]) Cap() int {
	return q.capacity
}

// Close drains every slot still holding a value, invoking the configured
// drop hook once per element. Single-owner: must not race with Push/Pop.
func (q *Axel[T]) Close() {
	s := unpackState(q.state.LoadAcquire())
	q.ring.drain(s.tail, s.head)
}
