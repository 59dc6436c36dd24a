package model

// Writer defines a generic interface for persisting snapshot rounds to an
// external sink. Implementations are expected to be safe for use from the
// snapshotter goroutine only.
type Writer interface {
	// Write persists one snapshot round. The timestamp is the formatted
	// wall-clock time at which the round was taken.
	Write(round Round, timestamp string) error
}
