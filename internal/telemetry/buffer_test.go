package telemetry

import (
	"sync"
	"testing"
	"time"
)

func TestSampleBufferEmpty(t *testing.T) {
	buf := NewSampleBuffer(16)
	if got := buf.Snapshot(); len(got) != 0 {
		t.Fatalf("expected empty snapshot, got %d samples", len(got))
	}
}

func TestSampleBufferPartialWindow(t *testing.T) {
	buf := NewSampleBuffer(16)
	for i := 1; i <= 5; i++ {
		buf.Record(time.Duration(i))
	}

	got := buf.Snapshot()
	if len(got) != 5 {
		t.Fatalf("expected 5 samples, got %d", len(got))
	}
}

func TestSampleBufferCircularOverwrite(t *testing.T) {
	const window = 16
	const extra = 7
	buf := NewSampleBuffer(window)

	for i := 1; i <= window+extra; i++ {
		buf.Record(time.Duration(i))
	}

	got := buf.Snapshot()
	if len(got) != window {
		t.Fatalf("expected exactly %d samples after overwrite, got %d", window, len(got))
	}

	// The snapshot must hold exactly the most recent `window` values,
	// order-independent.
	seen := make(map[time.Duration]bool, window)
	for _, d := range got {
		seen[d] = true
	}
	for i := extra + 1; i <= window+extra; i++ {
		if !seen[time.Duration(i)] {
			t.Errorf("expected sample %d to survive the overwrite", i)
		}
	}
	for i := 1; i <= extra; i++ {
		if seen[time.Duration(i)] {
			t.Errorf("sample %d should have been overwritten", i)
		}
	}
}

func TestSampleBufferClear(t *testing.T) {
	buf := NewSampleBuffer(16)
	for i := 0; i < 20; i++ {
		buf.Record(time.Duration(i + 1))
	}

	buf.Clear()
	if got := buf.Snapshot(); len(got) != 0 {
		t.Fatalf("expected empty snapshot after clear, got %d samples", len(got))
	}

	buf.Record(42)
	got := buf.Snapshot()
	if len(got) != 1 || got[0] != 42 {
		t.Fatalf("expected single sample 42 after clear, got %v", got)
	}
}

func TestSampleBufferConcurrentRecord(t *testing.T) {
	const window = 64
	buf := NewSampleBuffer(window)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				buf.Record(time.Duration(i + 1))
				if i%100 == 0 {
					buf.Snapshot()
				}
			}
		}()
	}
	wg.Wait()

	if got := buf.Snapshot(); len(got) != window {
		t.Fatalf("expected a full window of %d samples, got %d", window, len(got))
	}
}
