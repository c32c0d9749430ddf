// Package memory implements in-memory repositories for development and testing.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"bodymetrics/internal/domain"
)

// DB implements an in-memory history storage.
type DB struct {
	mu       sync.Mutex
	log      []domain.Measurement
	writes   int
	sessions map[string]*domain.Session
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		sessions: make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var _ domain.HistoryStorage = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// --- HistoryStorage ---

// ReadAll returns a copy of the stored log.
func (db *DB) ReadAll(ctx context.Context) ([]domain.Measurement, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return slices.Clone(db.log), nil
}

// WriteAll replaces the stored log with a copy of log.
func (db *DB) WriteAll(ctx context.Context, log []domain.Measurement) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.log = slices.Clone(log)
	db.writes++
	return nil
}

// Writes returns how many times the log has been written.
func (db *DB) Writes() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.writes
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, s domain.Session) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[s.Token] = &s
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		if time.Now().After(s.ExpiresAt) {
			delete(r.db.sessions, token)
			return nil, nil
		}
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}
