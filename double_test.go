// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package synqueue_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"github.com/kvark/synqueue"
)

// TestDoubleSmoke is end-to-end scenario 2: pop -> None; push 5 -> Ok;
// push 10 -> Ok; pop -> 5; pop -> 10; pop -> None.
func TestDoubleSmoke(t *testing.T) {
	q := synqueue.NewDouble[int](16)

	if _, err := q.Pop(); !errors.Is(err, synqueue.ErrWouldBlock) {
		t.Fatalf("Pop on empty: got %v, want ErrWouldBlock", err)
	}
	if err := q.Push(5); err != nil {
		t.Fatalf("Push(5): %v", err)
	}
	if err := q.Push(10); err != nil {
		t.Fatalf("Push(10): %v", err)
	}
	if val, err := q.Pop(); err != nil || val != 5 {
		t.Fatalf("Pop: got (%d, %v), want (5, nil)", val, err)
	}
	if val, err := q.Pop(); err != nil || val != 10 {
		t.Fatalf("Pop: got (%d, %v), want (10, nil)", val, err)
	}
	if _, err := q.Pop(); !errors.Is(err, synqueue.ErrWouldBlock) {
		t.Fatalf("Pop on empty: got %v, want ErrWouldBlock", err)
	}

	q.Close()
}

// TestDoubleCatchUpTermination is P7: Double's ordered narrow/wide catch-up
// must still terminate when many producer catch-ups interleave with many
// consumer catch-ups, even though on any given attempt only the
// producer/consumer immediately behind narrow.head / wide.tail may advance
// it.
func TestDoubleCatchUpTermination(t *testing.T) {
	if synqueue.RaceEnabled {
		t.Skip("skip: lock-free algorithm uses cross-variable memory ordering")
	}

	const (
		numProducers = 16
		numConsumers = 16
		itemsPerProd = 2000
		capacity     = 32
		timeout      = 10 * time.Second
	)

	q := synqueue.NewDouble[int](capacity)
	expectedTotal := numProducers * itemsPerProd

	var wg sync.WaitGroup
	var produced, consumed atomix.Int64
	var timedOut atomix.Bool
	deadline := time.Now().Add(timeout)

	for p := range numProducers {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			backoff := iox.Backoff{}
			for i := range itemsPerProd {
				if time.Now().After(deadline) {
					timedOut.Store(true)
					return
				}
				for q.Push(id*itemsPerProd+i) != nil {
					if time.Now().After(deadline) {
						timedOut.Store(true)
						return
					}
					backoff.Wait()
				}
				produced.Add(1)
				backoff.Reset()
			}
		}(p)
	}

	for range numConsumers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			backoff := iox.Backoff{}
			for consumed.Load() < int64(expectedTotal) {
				if time.Now().After(deadline) {
					timedOut.Store(true)
					return
				}
				if _, err := q.Pop(); err == nil {
					consumed.Add(1)
					backoff.Reset()
					continue
				}
				if produced.Load() == int64(expectedTotal) && consumed.Load() == int64(expectedTotal) {
					return
				}
				backoff.Wait()
			}
		}()
	}

	wg.Wait()

	if timedOut.Load() {
		t.Logf("timeout: produced=%d, consumed=%d/%d", produced.Load(), consumed.Load(), expectedTotal)
	}
	if got := consumed.Load(); got != int64(expectedTotal) {
		t.Errorf("consumed %d, want %d (producers and consumers never reached quiescence)", got, expectedTotal)
	}

	q.Close()
}
