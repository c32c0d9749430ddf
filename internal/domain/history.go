package domain

import "context"

// HistoryStorage is the port for persisting the measurement history. It
// reads and writes the whole log; the history store owns mutation.
type HistoryStorage interface {
	// ReadAll returns the stored log in insertion order. A missing store
	// yields an empty log; unreadable content yields a *CorruptDataWarning.
	ReadAll(ctx context.Context) ([]Measurement, error)
	// WriteAll replaces the stored log with log. It must not leave a
	// partially written store behind on failure.
	WriteAll(ctx context.Context, log []Measurement) error
}
