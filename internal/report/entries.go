package report

import (
	"slices"
	"strings"

	"github.com/t1a2l/SkyTools/internal/model"
)

// Entry is the flattened, sink-friendly form of one subject's aggregate
// within a round. Durations are carried as integer nanoseconds so every
// sink renders the same values.
type Entry struct {
	Subject   string `json:"subject"`
	TypeName  string `json:"type"`
	Method    string `json:"method"`
	Signature string `json:"signature"`
	Count     int    `json:"count"`
	AverageNs int64  `json:"average_ns"`
	MedianNs  int64  `json:"median_ns"`
}

// SortedEntries flattens a round into entries ordered by subject name, so
// writer output is deterministic across rounds.
func SortedEntries(round model.Round) []Entry {
	entries := make([]Entry, 0, len(round))
	for subject, snap := range round {
		entries = append(entries, Entry{
			Subject:   subject.String(),
			TypeName:  subject.TypeName,
			Method:    subject.Method,
			Signature: subject.Signature,
			Count:     snap.Count,
			AverageNs: int64(snap.Average),
			MedianNs:  int64(snap.Median),
		})
	}
	slices.SortFunc(entries, func(a, b Entry) int {
		return strings.Compare(a.Subject, b.Subject)
	})
	return entries
}
