package concurrency

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestProcessParallelKeepsOrder(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	results, errs := ProcessParallel(context.Background(), items, DefaultOptions(),
		func(ctx context.Context, index int, item int) (int, error) {
			return item * 10, nil
		})

	for i, r := range results {
		if r != items[i]*10 {
			t.Errorf("Expected result %d at index %d, got %d", items[i]*10, i, r)
		}
		if errs[i] != nil {
			t.Errorf("Expected nil error at index %d, got %v", i, errs[i])
		}
	}
}

func TestProcessParallelAlignsErrors(t *testing.T) {
	boom := errors.New("boom")
	items := []string{"ok", "fail", "ok"}

	results, errs := ProcessParallel(context.Background(), items, DefaultOptions(),
		func(ctx context.Context, index int, item string) (string, error) {
			if item == "fail" {
				return "", boom
			}
			return item + "!", nil
		})

	if errs[0] != nil || errs[2] != nil {
		t.Errorf("Expected successes at 0 and 2, got %v", errs)
	}
	if !errors.Is(errs[1], boom) {
		t.Errorf("Expected boom at index 1, got %v", errs[1])
	}
	if results[0] != "ok!" || results[2] != "ok!" {
		t.Errorf("Unexpected results %v", results)
	}
}

func TestProcessParallelEmptyInput(t *testing.T) {
	results, errs := ProcessParallel(context.Background(), []int{}, DefaultOptions(),
		func(ctx context.Context, index int, item int) (int, error) {
			t.Fatal("should not be called")
			return 0, nil
		})
	if len(results) != 0 || errs != nil {
		t.Errorf("Expected empty results and nil errors, got %v %v", results, errs)
	}
}

func TestProcessParallelBoundsWorkers(t *testing.T) {
	var running, peak int64
	items := make([]int, 20)

	ProcessParallel(context.Background(), items, ParallelOptions{MaxWorkers: 3},
		func(ctx context.Context, index int, item int) (int, error) {
			n := atomic.AddInt64(&running, 1)
			for {
				p := atomic.LoadInt64(&peak)
				if n <= p || atomic.CompareAndSwapInt64(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt64(&running, -1)
			return 0, nil
		})

	if peak > 3 {
		t.Errorf("Expected at most 3 concurrent workers, observed %d", peak)
	}
}

func TestProcessParallelCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, errs := ProcessParallel(ctx, []int{1, 2, 3}, DefaultOptions(),
		func(ctx context.Context, index int, item int) (int, error) {
			return item, nil
		})

	// With a cancelled context every remaining item reports ctx.Err().
	cancelled := 0
	for _, err := range errs {
		if errors.Is(err, context.Canceled) {
			cancelled++
		}
	}
	if cancelled == 0 {
		t.Errorf("Expected cancellation to surface in item errors, got %v", errs)
	}
}
