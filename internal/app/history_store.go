package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"bodymetrics/internal/domain"

	"github.com/google/uuid"
)

// ErrHistoryUnavailable is returned by mutations after the persisted log
// could not be read. Writing then would replace history that is still stored.
var ErrHistoryUnavailable = errors.New("history could not be read")

// HistoryStore owns the in-memory measurement log and is its only mutator.
// Every mutation is written through to storage before it returns; a failed
// write leaves the log as it was.
type HistoryStore struct {
	mu      sync.Mutex
	storage domain.HistoryStorage
	log     []domain.Measurement
	readErr error
	now     func() time.Time
	logger  *slog.Logger
}

// HistoryOption customises a HistoryStore.
type HistoryOption func(*HistoryStore)

// WithClock overrides the time source used for new timestamps.
func WithClock(now func() time.Time) HistoryOption {
	return func(s *HistoryStore) { s.now = now }
}

// WithLogger sets the logger used for warnings and write failures.
func WithLogger(l *slog.Logger) HistoryOption {
	return func(s *HistoryStore) { s.logger = l }
}

// NewHistoryStore creates an empty HistoryStore backed by storage. Call Load
// to read the persisted log.
func NewHistoryStore(storage domain.HistoryStorage, opts ...HistoryOption) *HistoryStore {
	s := &HistoryStore{storage: storage, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory log with the persisted one and returns a copy.
// A missing store yields an empty log. Malformed content also yields an
// empty log, returned together with the *domain.CorruptDataWarning. Any other
// read failure is returned as is and mutations fail with
// ErrHistoryUnavailable until a later Load succeeds.
func (s *HistoryStore) Load(ctx context.Context) ([]domain.Measurement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log, err := s.storage.ReadAll(ctx)
	if err == nil {
		seen := make(map[string]bool, len(log))
		for i, m := range log {
			verr := checkRecord(m)
			if verr == nil && seen[m.ID] {
				verr = &domain.ValidationError{Field: "id", Reason: fmt.Sprintf("duplicate %q", m.ID)}
			}
			if verr != nil {
				err = &domain.CorruptDataWarning{Source: fmt.Sprintf("record %d", i), Err: verr}
				break
			}
			seen[m.ID] = true
		}
	}
	var warn *domain.CorruptDataWarning
	switch {
	case errors.As(err, &warn):
		s.logger.Warn("history reset to empty", "error", warn)
		s.log, s.readErr = nil, nil
		return []domain.Measurement{}, warn
	case err != nil:
		s.logger.Error("history not readable", "error", err)
		s.log, s.readErr = nil, err
		return []domain.Measurement{}, fmt.Errorf("load history: %w", err)
	}

	s.log, s.readErr = log, nil
	s.logger.Debug("history loaded", "records", len(log))
	return slices.Clone(s.nonNil()), nil
}

// Append records m at the end of the log and persists the whole log. The
// timestamp and id are assigned here when unset.
func (s *HistoryStore) Append(ctx context.Context, m domain.Measurement) (domain.Measurement, error) {
	if err := m.Validate(); err != nil {
		return domain.Measurement{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readErr != nil {
		return domain.Measurement{}, &domain.PersistenceError{Op: "append", Err: ErrHistoryUnavailable}
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = s.now().UTC().Truncate(time.Microsecond)
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	next := append(slices.Clone(s.log), m)
	if err := s.storage.WriteAll(ctx, next); err != nil {
		s.logger.Error("append not persisted", "error", err)
		return domain.Measurement{}, &domain.PersistenceError{Op: "append", Err: err}
	}
	s.log = next
	return m, nil
}

// Clear empties the log and persists the empty state. It is irreversible;
// callers are expected to confirm with the user first.
func (s *HistoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readErr != nil {
		return &domain.PersistenceError{Op: "clear", Err: ErrHistoryUnavailable}
	}
	if err := s.storage.WriteAll(ctx, []domain.Measurement{}); err != nil {
		s.logger.Error("clear not persisted", "error", err)
		return &domain.PersistenceError{Op: "clear", Err: err}
	}
	s.logger.Info("history cleared", "records", len(s.log))
	s.log = nil
	return nil
}

// All returns a snapshot of the log in insertion order.
func (s *HistoryStore) All() []domain.Measurement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.nonNil())
}

// Latest returns the most recently appended measurement.
func (s *HistoryStore) Latest() (domain.Measurement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.log) == 0 {
		return domain.Measurement{}, false
	}
	return s.log[len(s.log)-1], true
}

func (s *HistoryStore) nonNil() []domain.Measurement {
	if s.log == nil {
		return []domain.Measurement{}
	}
	return s.log
}

// checkRecord validates a stored record, including the identity fields that
// Append assigns.
func checkRecord(m domain.Measurement) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.Timestamp.IsZero() {
		return &domain.ValidationError{Field: "timestamp", Reason: "is missing"}
	}
	if m.ID == "" {
		return &domain.ValidationError{Field: "id", Reason: "is missing"}
	}
	return nil
}
