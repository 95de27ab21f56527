package clipwork

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func TestRunCollectsEveryFailure(t *testing.T) {
	var calls atomic.Int32
	err := Run(context.Background(), "segment", 10, 3, func(_ context.Context, i int) error {
		calls.Add(1)
		if i%3 == 0 {
			return fmt.Errorf("cut: %w", errBoom)
		}
		return nil
	})

	if calls.Load() != 10 {
		t.Fatalf("calls = %d; want 10 (no fail-fast)", calls.Load())
	}
	be, ok := AsBatch(err)
	if !ok {
		t.Fatalf("err = %v; want *BatchError", err)
	}
	if got, want := be.Indices(), []int{0, 3, 6, 9}; !reflect.DeepEqual(got, want) {
		t.Fatalf("indices = %v; want %v", got, want)
	}
	if !errors.Is(err, errBoom) {
		t.Fatalf("errors.Is(err, errBoom) = false")
	}
}

func TestRunRespectsLimit(t *testing.T) {
	var cur, peak atomic.Int32
	err := Run(context.Background(), "merge", 20, 4, func(_ context.Context, _ int) error {
		n := cur.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		cur.Add(-1)
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if peak.Load() > 4 {
		t.Fatalf("peak concurrency = %d; want <= 4", peak.Load())
	}
}

func TestRunResultsIndependentOfCompletionOrder(t *testing.T) {
	out := make([]int, 8)
	err := Run(context.Background(), "segment", len(out), 8, func(_ context.Context, i int) error {
		// les derniers index finissent en premier
		time.Sleep(time.Duration(len(out)-i) * time.Millisecond)
		out[i] = i * 10
		return nil
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i, v := range out {
		if v != i*10 {
			t.Fatalf("out[%d] = %d", i, v)
		}
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls atomic.Int32
	err := Run(ctx, "segment", 5, 1, func(_ context.Context, _ int) error {
		calls.Add(1)
		return nil
	})
	if calls.Load() != 0 {
		t.Fatalf("calls = %d after cancel", calls.Load())
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v; want context.Canceled", err)
	}
}

func TestNewBatchErrorEmpty(t *testing.T) {
	if err := NewBatchError("x", nil); err != nil {
		t.Fatalf("NewBatchError(nil) = %v", err)
	}
}
