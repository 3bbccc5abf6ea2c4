// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package synqueue

// ring is the shared backing storage for Axel and Double: capacity+1 slots,
// one sacrificed so head==tail is unambiguously "empty". Masked reuses the
// same slice layout but advances by explicit comparison against len(slots),
// never by masking, since capacity+1 need not be a power of two.
type ring[T any] struct {
	slots  []T
	onDrop func(T)
}

func newRing[T any](capacity int, onDrop func(T)) ring[T] {
	return ring[T]{
		slots:  make([]T, capacity+1),
		onDrop: onDrop,
	}
}

// advance computes (i+1) mod len(slots).
func (r *ring[T]) advance(i uint32) uint32 {
	if int(i)+1 == len(r.slots) {
		return 0
	}
	return i + 1
}

// store moves value into slot i, transferring ownership into the ring.
func (r *ring[T]) store(i uint32, value T) {
	r.slots[i] = value
}

// take destructively reads slot i, zeroing it so the GC can reclaim any
// referenced memory — the Go analogue of "move out, never implicit drop".
func (r *ring[T]) take(i uint32) T {
	value := r.slots[i]
	var zero T
	r.slots[i] = zero
	return value
}

// drain walks from tail to head (exclusive), invoking onDrop once per
// surviving element and zeroing each slot. Single-owner: callers must
// guarantee no concurrent Push/Pop.
func (r *ring[T]) drain(tail, head uint32) {
	cursor := tail
	for cursor != head {
		value := r.take(cursor)
		if r.onDrop != nil {
			r.onDrop(value)
		}
		cursor = r.advance(cursor)
	}
}

func (r *ring[T]) cap() int {
	return len(r.slots) - 1
}
