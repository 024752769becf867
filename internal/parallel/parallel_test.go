package parallel

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestFor(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8}

	n := 1000
	visits := make([]int32, n)
	For(n, func(i int) {
		atomic.AddInt32(&visits[i], 1)
	}, cfg)

	for i, v := range visits {
		if v != 1 {
			t.Fatalf("index %d visited %d times, want 1", i, v)
		}
	}
}

func TestFor_Sequential(t *testing.T) {
	var counter int64
	For(100, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, Sequential())

	if counter != 100 {
		t.Errorf("Expected 100, got %d", counter)
	}
}

func TestForRange_Chunks(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3, MinChunkSize: 10}

	var mu sync.Mutex
	total := 0
	chunks := 0
	ForRange(95, func(start, end int) {
		mu.Lock()
		defer mu.Unlock()
		if end <= start {
			t.Errorf("empty chunk [%d, %d)", start, end)
		}
		total += end - start
		chunks++
	}, cfg)

	if total != 95 {
		t.Errorf("covered %d items, want 95", total)
	}
	if chunks != 3 {
		t.Errorf("got %d chunks, want 3", chunks)
	}
}

func TestForRange_SmallRunsInline(t *testing.T) {
	calls := 0
	ForRange(5, func(start, end int) {
		calls++
		if start != 0 || end != 5 {
			t.Errorf("got [%d, %d), want [0, 5)", start, end)
		}
	}, DefaultConfig())

	if calls != 1 {
		t.Errorf("got %d calls, want 1", calls)
	}

	ForRange(0, func(_, _ int) { t.Error("called for n=0") }, DefaultConfig())
}
