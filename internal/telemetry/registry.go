package telemetry

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/t1a2l/SkyTools/internal/model"
)

// Registry owns one SampleBuffer per tracked subject plus the history of
// snapshot rounds taken across them. Buffer creation happens under the
// registry-wide lock; recording into an existing buffer only takes the
// per-buffer lock, keeping the hot path short.
type Registry struct {
	window int

	mu      sync.RWMutex
	buffers map[model.Subject]*SampleBuffer

	histMu  sync.Mutex
	history []model.Round
}

// NewRegistry creates a registry whose buffers hold the most recent window
// samples per subject.
func NewRegistry(window int) *Registry {
	return &Registry{
		window:  window,
		buffers: make(map[model.Subject]*SampleBuffer),
	}
}

// Window returns the configured per-subject window size.
func (r *Registry) Window() int {
	return r.window
}

// RecordSample stores one elapsed-time sample for a subject, lazily creating
// the subject's buffer on first use. It is called from interception hooks on
// arbitrary goroutines and never fails; a zero-value subject is ignored.
func (r *Registry) RecordSample(subject model.Subject, elapsed time.Duration) {
	if subject == (model.Subject{}) {
		return
	}

	r.mu.RLock()
	buf := r.buffers[subject]
	r.mu.RUnlock()

	if buf == nil {
		r.mu.Lock()
		// Re-check: another goroutine may have created it in between.
		buf = r.buffers[subject]
		if buf == nil {
			buf = NewSampleBuffer(r.window)
			r.buffers[subject] = buf
		}
		r.mu.Unlock()
	}

	buf.Record(elapsed)
}

// ClearAll discards every sample buffer. The snapshot history is untouched.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	r.buffers = make(map[model.Subject]*SampleBuffer)
	r.mu.Unlock()
}

// ClearHistory drops all recorded snapshot rounds.
func (r *Registry) ClearHistory() {
	r.histMu.Lock()
	r.history = nil
	r.histMu.Unlock()
}

// MakeSnapshotRound copies every subject's buffer, aggregates the copies and
// appends the resulting round to the history. Each buffer is locked only for
// its copy; aggregation runs outside any lock. Recording may interleave with
// the copies, which is an accepted approximation of the rolling window.
func (r *Registry) MakeSnapshotRound() model.Round {
	r.mu.RLock()
	buffers := make(map[model.Subject]*SampleBuffer, len(r.buffers))
	for subject, buf := range r.buffers {
		buffers[subject] = buf
	}
	r.mu.RUnlock()

	round := make(model.Round, len(buffers))
	for subject, buf := range buffers {
		round[subject] = Aggregate(buf.Snapshot())
	}

	r.histMu.Lock()
	r.history = append(r.history, round)
	r.histMu.Unlock()

	return round
}

// History returns a copy of the recorded rounds in chronological order.
func (r *Registry) History() []model.Round {
	r.histMu.Lock()
	out := make([]model.Round, len(r.history))
	copy(out, r.history)
	r.histMu.Unlock()
	return out
}

// Dump renders the history as delimited text: one line per round, and for
// each requested subject, in the given order, the three fields
// "count;average;median;". A subject with no data in a round renders as
// three empty fields so the columns keep their positions. Durations render
// as integer nanoseconds.
func (r *Registry) Dump(subjects []model.Subject) string {
	var b strings.Builder
	for _, round := range r.History() {
		for _, subject := range subjects {
			snap, ok := round[subject]
			if !ok {
				b.WriteString(";;;")
				continue
			}
			b.WriteString(formatSnapshot(snap))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatSnapshot(snap model.Snapshot) string {
	return strconv.Itoa(snap.Count) + ";" +
		strconv.FormatInt(int64(snap.Average), 10) + ";" +
		strconv.FormatInt(int64(snap.Median), 10) + ";"
}
