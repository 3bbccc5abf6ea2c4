// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package synqueue provides bounded, lock-free, multi-producer
// multi-consumer FIFO queues.
//
// Three independent synchronization strategies are available, all sharing
// the same capacity semantics and the same [SynQueue] contract:
//
//   - [Axel]: a packed head/tail state word paired with a side occupancy
//     bitmap, one bit per slot.
//   - [Double]: two packed state words, wide and narrow; Push reserves on
//     wide and advances narrow once the value is written, Pop reserves on
//     narrow and advances wide once the value is read.
//   - [Masked]: a single packed state word per side, carrying a shifting
//     bitmask of in-flight operations alongside the slot index.
//
// Unlike FAA-based SCQ-style queues, none of these algorithms use per-slot
// sequence numbers; synchronization lives entirely in the packed state
// words and, for Axel, the occupancy bitmap.
//
// # Quick Start
//
//	q := synqueue.NewAxel[Event](1024)
//	q := synqueue.NewDouble[*Request](4096)
//	q := synqueue.NewMasked[Job](1024) // capacity must be a power of two
//
// # Basic Usage
//
// All three variants share the same interface for pushing and popping:
//
//	q := synqueue.NewAxel[int](1024)
//
//	// Push (non-blocking)
//	err := q.Push(42)
//	if synqueue.IsWouldBlock(err) {
//	    // queue is full - handle backpressure
//	}
//
//	// Pop (non-blocking)
//	value, err := q.Pop()
//	if synqueue.IsWouldBlock(err) {
//	    // queue is empty - try again later
//	}
//
// # Choosing a Variant
//
// Axel trades a side occupancy bitmap (one bit per slot) for bit releases
// that can land in any order relative to each other, same as Masked. Double
// needs no side bitmap but a reservation cannot be marked ready until every
// earlier reservation on the same side has been marked ready first, so one
// stalled goroutine can stall its peers on the same side.
//
// Masked folds the occupancy information into the same word as the index,
// at the cost of a fixed 20-bit index field: capacity+1 must fit in 20 bits,
// and capacity itself must be a power of two.
//
// # Common Patterns
//
// Worker pool:
//
//	q := synqueue.NewMasked[Job](4096)
//
//	for range numWorkers {
//	    go func() {
//	        backoff := iox.Backoff{}
//	        for {
//	            job, err := q.Pop()
//	            if err != nil {
//	                backoff.Wait()
//	                continue
//	            }
//	            backoff.Reset()
//	            job.Run()
//	        }
//	    }()
//	}
//
//	func Submit(j Job) error {
//	    return q.Push(j)
//	}
//
// # Error Handling
//
// Queues return [ErrWouldBlock] when an operation cannot proceed immediately,
// whether the queue is full (Push) or empty (Pop). The error is sourced from
// [code.hybscloud.com/iox] for ecosystem consistency; callers that need to
// distinguish the two cases should track occupancy themselves, since the
// lock-free state words do not expose an exact count.
//
//	backoff := iox.Backoff{}
//	for {
//	    err := q.Push(item)
//	    if err == nil {
//	        backoff.Reset()
//	        break
//	    }
//	    if !synqueue.IsWouldBlock(err) {
//	        return err // unexpected error
//	    }
//	    backoff.Wait()
//	}
//
// For semantic error classification (delegates to iox):
//
//	synqueue.IsWouldBlock(err)  // true if queue full/empty
//	synqueue.IsSemantic(err)    // true if control flow signal
//	synqueue.IsNonFailure(err)  // true if nil or ErrWouldBlock
//
// # Capacity
//
// Axel and Double accept any capacity >= 1. Masked requires capacity to be
// a power of two, and capacity+1 to fit a 20-bit index field (so at most
// 524288 usable slots); NewMasked panics otherwise. Every variant allocates
// one extra, never-visible slot internally so that an empty queue and a
// full queue never collide on the same state value.
//
// Length is intentionally not provided: an exact count would require
// cross-core synchronization beyond what the packed state words already
// pay for. Track counts in application logic when needed.
//
// # Thread Safety
//
// Push and Pop may be called concurrently from any number of goroutines, in
// any mix, on the same queue. A single queue value must not be copied after
// first use; construct it once with NewAxel/NewDouble/NewMasked and share
// the pointer.
//
// # Destruction
//
// Go has no destructor analogue to a Drop trait, so draining on shutdown is
// explicit: call Close once all Push/Pop activity on the queue has
// quiesced. Close invokes the drop hook configured via [WithOnDrop], once
// per value still resident in the queue. Close does not reset the queue's
// state words, so the drained slots still count as occupied afterwards.
// Close must not race with Push or Pop.
//
// # Race Detection
//
// Go's race detector is not designed for lock-free algorithm verification.
// It tracks explicit synchronization primitives (mutex, channels, WaitGroup)
// but cannot observe happens-before relationships established purely
// through atomic acquire-release orderings on separate variables. These
// algorithms are correct, but the race detector may report false positives
// on the concurrent stress tests; those skip themselves when [RaceEnabled]
// is true.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit memory
// ordering, and [code.hybscloud.com/spin] for CPU pause instructions during
// CAS retries. When built with the synqtrace tag, CAS retries and stalls
// are additionally reported through [github.com/joeycumines/logiface] and
// [github.com/joeycumines/stumpy].
package synqueue
