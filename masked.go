// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package synqueue

import (
	"math/bits"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

const (
	maskedIndexBits = 20
	maskedIndexMask = (1 << maskedIndexBits) - 1
	maskedTotalBits = 64
)

// Masked is a bounded MPMC queue that packs a round-robin shifting bitmask
// of in-flight operations into the same word as the slot index. Unlike
// Double, bit releases may complete out of order: a slow producer does not
// block a faster one from continuing to reserve slots, it only blocks the
// reservation from running into the oldest still-in-flight slot on the
// opposite side.
type Masked[T any] struct {
	_        pad
	head     atomix.Uint64
	_        padShort
	tail     atomix.Uint64
	_        padShort
	ring     ring[T]
	capacity int
}

// NewMasked creates a Masked queue able to hold up to capacity elements.
// Panics if capacity is not a power of two, or if it is too large to fit
// the fixed-width index field.
func NewMasked[T any](capacity int, opts ...Option[T]) *Masked[T] {
	if capacity < 1 || capacity&(capacity-1) != 0 {
		panic("synqueue: masked queue capacity must be a power of two")
	}
	if capacity+1 > 1<<maskedIndexBits {
		panic("synqueue: masked queue capacity exceeds index width")
	}
	o := buildOptions(opts)
	return &Masked[T]{
		ring:     newRing[T](capacity, o.onDrop),
		capacity: capacity,
	}
}

// lastUsedIndex returns the slot index of the oldest still in-flight
// operation recorded in richIndex's shifting bitmask, or richIndex's own
// slot index if nothing is in flight.
func (q *Masked[T]) lastUsedIndex(richIndex uint64) uint64 {
	index := richIndex & maskedIndexMask
	ringLen := uint64(q.ring.cap() + 1)
	offset := (maskedTotalBits - maskedIndexBits) - bits.LeadingZeros64(richIndex)
	if offset < 0 {
		offset = 0
	}
	if index >= uint64(offset) {
		return index - uint64(offset)
	}
	return index + ringLen - uint64(offset)
}

// casAcquire reserves the next slot in mainRef, bounds-checked against the
// oldest in-flight operation recorded in guardRef. newValueCheck selects
// whether the bounds check applies to mainRef's current slot (pop, against
// the oldest still-unwritten push) or its prospective next slot (push,
// against the oldest still-unread pop). Returns ok=false if the reservation
// would run into that bound.
func (q *Masked[T]) casAcquire(mainRef, guardRef *atomix.Uint64, newValueCheck bool) (index uint32, next uint64, ok bool) {
	sw := spin.Wait{}
	ringLen := uint64(q.ring.cap() + 1)

	guard := guardRef.LoadAcquire()
	lastUsed := q.lastUsedIndex(guard)
	main := mainRef.LoadAcquire()

	for {
		for main >= 1<<(maskedTotalBits-1) {
			// The top bit of the in-flight mask is set; shifting again
			// would drop the oldest in-flight reservation.
			defaultTracer.stall("masked", "acquire-overflow", 0)
			sw.Once()
			main = mainRef.LoadAcquire()
		}

		next = ((main &^ maskedIndexMask) << 1) | (1 << maskedIndexBits)
		if (main&maskedIndexMask)+1 != ringLen {
			next |= (main & maskedIndexMask) + 1
		}

		var checkIndex uint64
		if newValueCheck {
			checkIndex = next & maskedIndexMask
		} else {
			checkIndex = main & maskedIndexMask
		}
		if checkIndex == lastUsed {
			guard = guardRef.LoadAcquire()
			lastUsed = q.lastUsedIndex(guard)
			if checkIndex == lastUsed {
				return 0, 0, false
			}
		}

		if mainRef.CompareAndSwapAcqRel(main, next) {
			break
		}
		defaultTracer.retry("masked", "acquire", uint32(main&maskedIndexMask))
		main = mainRef.LoadAcquire()
		sw.Once()
	}
	return uint32(main & maskedIndexMask), next, true
}

// casRelease clears the in-flight bit that casAcquire set for doneIndex,
// identified by its distance behind atomicRef's current slot index.
func (q *Masked[T]) casRelease(atomicRef *atomix.Uint64, current uint64, doneIndex uint32) {
	sw := spin.Wait{}
	ringLen := uint64(q.ring.cap() + 1)

	for {
		curIndex := current & maskedIndexMask
		var offset uint64
		if curIndex > uint64(doneIndex) {
			offset = curIndex - uint64(doneIndex)
		} else {
			offset = curIndex + ringLen - uint64(doneIndex)
		}
		debugAssert(offset+maskedIndexBits <= maskedTotalBits, "masked: release offset overflows state word")
		bit := uint64(1) << (maskedIndexBits - 1 + offset)
		debugAssert(current&bit != 0, "masked: release bit already clear")

		next := current ^ bit
		if atomicRef.CompareAndSwapAcqRel(current, next) {
			return
		}
		defaultTracer.retry("masked", "release", doneIndex)
		current = atomicRef.LoadAcquire()
		sw.Once()
	}
}

// Push transfers value into the queue. Returns ErrWouldBlock if full.
func (q *Masked[T]) Push(value T) error {
	index, next, ok := q.casAcquire(&q.head, &q.tail, true)
	if !ok {
		return ErrWouldBlock
	}
	q.ring.store(index, value)
	q.casRelease(&q.head, next, index)
	return nil
}

// Pop removes and returns the oldest value in the queue. Returns the zero
// value and ErrWouldBlock if the queue is logically empty.
func (q *Masked[T]) Pop() (T, error) {
	index, next, ok := q.casAcquire(&q.tail, &q.head, false)
	if !ok {
		var zero T
		return zero, ErrWouldBlock
	}
	value := q.ring.take(index)
	q.casRelease(&q.tail, next, index)
	return value, nil
}

// IsEmpty is a best-effort, racy observation of queue occupancy.
func (q *Masked[T]) IsEmpty() bool {
	head := q.head.LoadAcquire() & maskedIndexMask
	tail := q.tail.LoadAcquire() & maskedIndexMask
	return head == tail
}

// Cap returns the usable capacity.
func (q *Masked[T]) Cap() int {
	return q.capacity
}

// Close drains every slot still holding a value, invoking the configured
// drop hook once per element. Single-owner: must not race with Push/Pop.
func (q *Masked[T]) Close() {
	head := q.head.LoadAcquire()
	tail := q.tail.LoadAcquire()
	debugAssert(head&^uint64(maskedIndexMask) == 0, "masked: in-flight push bits remain at close")
	debugAssert(tail&^uint64(maskedIndexMask) == 0, "masked: in-flight pop bits remain at close")
	q.ring.drain(uint32(tail&maskedIndexMask), uint32(head&maskedIndexMask))
}
