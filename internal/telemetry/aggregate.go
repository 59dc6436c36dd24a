package telemetry

import (
	"slices"
	"time"

	"github.com/t1a2l/SkyTools/internal/model"
)

// Aggregate reduces a window of elapsed-time samples to its count, mean and
// median. The input slice is not modified; the function sorts a private copy
// so the result is invariant under permutation of the input. An empty input
// yields the zero Snapshot rather than an error.
func Aggregate(samples []time.Duration) model.Snapshot {
	n := len(samples)
	if n == 0 {
		return model.Snapshot{}
	}

	sorted := make([]time.Duration, n)
	copy(sorted, samples)
	slices.Sort(sorted)

	var sum time.Duration
	for _, s := range sorted {
		sum += s
	}

	// Integer division truncates the mean, matching the integer-tick
	// semantics of the report format.
	average := sum / time.Duration(n)

	var median time.Duration
	if n%2 == 1 {
		median = sorted[n/2]
	} else {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	}

	return model.Snapshot{Count: n, Average: average, Median: median}
}
