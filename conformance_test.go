// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package synqueue_test

import (
	"slices"
	"testing"

	"github.com/kvark/synqueue"
)

// TestConformanceWraparound is end-to-end scenario 5, generalized across
// every variant: with capacity 4, interleave 10 push/pop pairs; the slot
// index wraps through 0 at least once (guaranteed once cycle count exceeds
// ring length); every value is returned in push order.
func TestConformanceWraparound(t *testing.T) {
	for v := range slices.Values(allVariants) {
		t.Run(v.name, func(t *testing.T) {
			const capacity = 4
			q := v.new(capacity)

			for round := range 10 {
				if err := q.Push(round); err != nil {
					t.Fatalf("round %d: Push: %v", round, err)
				}
				val, err := q.Pop()
				if err != nil {
					t.Fatalf("round %d: Pop: %v", round, err)
				}
				if val != round {
					t.Fatalf("round %d: Pop: got %d, want %d", round, val, round)
				}
			}

			q.Close()
		})
	}
}

// droppable stands in for "a type that increments a global counter on
// drop"; the drop hook passed via WithOnDrop does the counting.
type droppable struct {
	id      int
	counter *int
}

// TestConformanceDestructorScenario6 is end-to-end scenario 6: push 7
// elements of a type that increments a global counter on drop, destroy the
// queue, counter equals 7.
func TestConformanceDestructorScenario6(t *testing.T) {
	variants := []struct {
		name string
		new  func(capacity int, onDrop func(droppable)) synqueue.SynQueue[droppable]
	}{
		{name: "Axel", new: func(capacity int, onDrop func(droppable)) synqueue.SynQueue[droppable] {
			return synqueue.NewAxel[droppable](capacity, synqueue.WithOnDrop(onDrop))
		}},
		{name: "Double", new: func(capacity int, onDrop func(droppable)) synqueue.SynQueue[droppable] {
			return synqueue.NewDouble[droppable](capacity, synqueue.WithOnDrop(onDrop))
		}},
		{name: "Masked", new: func(capacity int, onDrop func(droppable)) synqueue.SynQueue[droppable] {
			return synqueue.NewMasked[droppable](capacity, synqueue.WithOnDrop(onDrop))
		}},
	}

	for v := range slices.Values(variants) {
		t.Run(v.name, func(t *testing.T) {
			var counter int
			q := v.new(8, func(d droppable) {
				counter++
			})

			for i := range 7 {
				if err := q.Push(droppable{id: i, counter: &counter}); err != nil {
					t.Fatalf("Push(%d): %v", i, err)
				}
			}

			q.Close()

			if counter != 7 {
				t.Fatalf("destructor counter = %d, want 7", counter)
			}
		})
	}
}
