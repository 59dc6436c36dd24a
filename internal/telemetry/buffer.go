package telemetry

import (
	"sync"
	"time"
)

// SampleBuffer is a fixed-capacity circular store of elapsed-time samples
// for a single subject. Once the window is full, new samples overwrite the
// oldest slots. All methods are safe for concurrent use; the critical
// section of Record is a single slot write plus a cursor increment.
type SampleBuffer struct {
	mu     sync.Mutex
	slots  []time.Duration
	cursor int
	filled int
}

// NewSampleBuffer creates a buffer holding the most recent window samples.
func NewSampleBuffer(window int) *SampleBuffer {
	return &SampleBuffer{slots: make([]time.Duration, window)}
}

// Record stores one sample, overwriting the oldest slot once the window has
// wrapped. It never fails.
func (b *SampleBuffer) Record(elapsed time.Duration) {
	b.mu.Lock()
	b.slots[b.cursor] = elapsed
	b.cursor = (b.cursor + 1) % len(b.slots)
	if b.filled < len(b.slots) {
		b.filled++
	}
	b.mu.Unlock()
}

// Snapshot returns a copy of every slot written since the last Clear, at
// most the window size. The order of the returned samples carries no
// meaning; aggregation over them is order-independent. The lock is held only
// for the copy.
func (b *SampleBuffer) Snapshot() []time.Duration {
	b.mu.Lock()
	out := make([]time.Duration, b.filled)
	copy(out, b.slots[:b.filled])
	b.mu.Unlock()
	return out
}

// Clear resets the buffer to empty. Subsequent Snapshot calls return an
// empty slice until new samples arrive.
func (b *SampleBuffer) Clear() {
	b.mu.Lock()
	b.cursor = 0
	b.filled = 0
	b.mu.Unlock()
}
