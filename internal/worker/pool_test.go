package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func upper(_ context.Context, s string) (string, error) {
	return "processed-" + s, nil
}

func TestNewPoolDefaultConcurrency(t *testing.T) {
	p := NewPool[string](0)
	if p.Concurrency() != runtime.NumCPU() {
		t.Errorf("expected concurrency %d, got %d", runtime.NumCPU(), p.Concurrency())
	}

	p2 := NewPool[string](-1)
	if p2.Concurrency() != runtime.NumCPU() {
		t.Errorf("expected concurrency %d for -1, got %d", runtime.NumCPU(), p2.Concurrency())
	}
}

func TestNewPoolExplicitConcurrency(t *testing.T) {
	p := NewPool[string](4)
	if p.Concurrency() != 4 {
		t.Errorf("expected concurrency 4, got %d", p.Concurrency())
	}
}

func TestProcessEmpty(t *testing.T) {
	p := NewPool[string](2)
	results := p.Process(context.Background(), nil, upper)
	if results != nil {
		t.Errorf("expected nil results for empty input, got %v", results)
	}
}

func TestProcessPreservesOrder(t *testing.T) {
	p := NewPool[string](4)
	items := []string{"run-a", "run-b", "run-c", "run-d", "run-e", "run-f", "run-g", "run-h"}

	results := p.Process(context.Background(), items, upper)

	if len(results) != len(items) {
		t.Fatalf("expected %d results, got %d", len(items), len(results))
	}
	for i, r := range results {
		if r.Err != nil {
			t.Errorf("result[%d] unexpected error: %v", i, r.Err)
		}
		if r.Value != "processed-"+items[i] {
			t.Errorf("result[%d] = %q, expected %q", i, r.Value, "processed-"+items[i])
		}
		if r.Index != i || r.Item != items[i] {
			t.Errorf("result[%d] = {Index: %d, Item: %q}", i, r.Index, r.Item)
		}
	}
}

func TestProcessCapturesErrors(t *testing.T) {
	p := NewPool[int](2)
	items := []string{"ok", "fail", "ok", "fail"}

	results := p.Process(context.Background(), items, func(_ context.Context, s string) (int, error) {
		if s == "fail" {
			return 0, fmt.Errorf("failed on %s", s)
		}
		return 1, nil
	})

	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if results[0].Err != nil || results[0].Value != 1 {
		t.Errorf("result[0] should succeed, got err=%v val=%d", results[0].Err, results[0].Value)
	}
	if results[2].Err != nil || results[2].Value != 1 {
		t.Errorf("result[2] should succeed, got err=%v val=%d", results[2].Err, results[2].Value)
	}
	if results[1].Err == nil || results[3].Err == nil {
		t.Error("failing items should carry their error")
	}
	if got := len(Errors(results)); got != 2 {
		t.Errorf("Errors() returned %d errors, want 2", got)
	}
}

func TestProcessConcurrency(t *testing.T) {
	p := NewPool[int](4)

	var maxConcurrent int64
	var current int64
	items := make([]string, 20)
	for i := range items {
		items[i] = fmt.Sprintf("item-%d", i)
	}

	results := p.Process(context.Background(), items, func(_ context.Context, _ string) (int, error) {
		c := atomic.AddInt64(&current, 1)
		for {
			old := atomic.LoadInt64(&maxConcurrent)
			if c <= old || atomic.CompareAndSwapInt64(&maxConcurrent, old, c) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt64(&current, -1)
		return 1, nil
	})

	if len(results) != 20 {
		t.Fatalf("expected 20 results, got %d", len(results))
	}
	peak := atomic.LoadInt64(&maxConcurrent)
	if peak < 2 {
		t.Errorf("expected concurrent execution (peak=%d), got sequential", peak)
	}
	if peak > 4 {
		t.Errorf("peak concurrency %d exceeds limit 4", peak)
	}
}

func TestProcessCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int64
	p := NewPool[string](2)
	results := p.Process(ctx, []string{"a", "b", "c"}, func(_ context.Context, s string) (string, error) {
		atomic.AddInt64(&calls, 1)
		return s, nil
	})

	if atomic.LoadInt64(&calls) != 0 {
		t.Errorf("fn called %d times after cancel, want 0", calls)
	}
	for i, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("result[%d].Err = %v, want context.Canceled", i, r.Err)
		}
	}
}

func TestProcessMoreWorkersThanItems(t *testing.T) {
	p := NewPool[string](100)
	results := p.Process(context.Background(), []string{"a", "b"}, func(_ context.Context, s string) (string, error) {
		return s + "!", nil
	})

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Value != "a!" || results[1].Value != "b!" {
		t.Errorf("unexpected values: %v, %v", results[0].Value, results[1].Value)
	}
}

func BenchmarkPoolProcess(b *testing.B) {
	items := make([]string, 100)
	for i := range items {
		items[i] = fmt.Sprintf("item-%d", i)
	}
	b.ResetTimer()
	for range b.N {
		p := NewPool[string](4)
		_ = p.Process(context.Background(), items, upper)
	}
}
