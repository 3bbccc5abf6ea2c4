// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package synqueue

import "unsafe"

// word_size = 2 * index_size is a load-bearing assumption for every packed
// state word below: two 32-bit indices must fit in one 64-bit CAS target.
// A build on a platform where this does not hold must fail to compile.
var _ [unsafe.Sizeof(uint64(0)) - 2*unsafe.Sizeof(uint32(0))]struct{}

// state is the unpacked view of one (head, tail) word shared by Axel and
// Double. head is where the next push reserves; tail is where the next pop
// reserves.
type state struct {
	head uint32
	tail uint32
}

const stateHeadBits = 32

func unpackState(raw uint64) state {
	return state{
		head: uint32(raw),
		tail: uint32(raw >> stateHeadBits),
	}
}

func (s state) pack() uint64 {
	return uint64(s.head) | uint64(s.tail)<<stateHeadBits
}

func (s state) withHead(head uint32) state {
	s.head = head
	return s
}

func (s state) withTail(tail uint32) state {
	s.tail = tail
	return s
}
