// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package synqueue_test

import (
	"testing"

	"github.com/kvark/synqueue"
)

// TestMaskedPowerOfTwoRejection is the first half of end-to-end scenario 3:
// new(3) fails at construction. TestMaskedPowerOfTwoAccepted checks that
// new(4) succeeds.
func TestMaskedPowerOfTwoRejection(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewMasked(3) did not panic")
		}
	}()
	synqueue.NewMasked[int](3)
}

func TestMaskedPowerOfTwoAccepted(t *testing.T) {
	q := synqueue.NewMasked[int](4)
	if got := q.Cap(); got != 4 {
		t.Fatalf("Cap: got %d, want 4", got)
	}
	q.Close()
}

// TestMaskedSequentialReleaseFIFO pushes two values, each released before
// the next is reserved, then pops both and expects them in push order.
// Every release here completes in order; no out-of-order release occurs.
func TestMaskedSequentialReleaseFIFO(t *testing.T) {
	q := synqueue.NewMasked[int](8)

	if err := q.Push(1); err != nil {
		t.Fatalf("Push(1): %v", err)
	}
	if err := q.Push(2); err != nil {
		t.Fatalf("Push(2): %v", err)
	}

	val, err := q.Pop()
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if val != 1 {
		t.Fatalf("Pop: got %d, want 1 (FIFO order preserved regardless of release order)", val)
	}

	val, err = q.Pop()
	if err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if val != 2 {
		t.Fatalf("Pop: got %d, want 2", val)
	}

	q.Close()
}
