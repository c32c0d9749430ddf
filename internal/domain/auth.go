// Package domain contains the measurement model, the health metric formulas
// and the ports implemented by the adapters.
package domain

import (
	"context"
	"time"
)

// Owner is the single account allowed to use the application.
type Owner struct {
	Username     string
	PasswordHash string
	// Email is matched against the verified SSO identity; empty disables SSO login.
	Email string
}

// Session represents an active owner session.
type Session struct {
	Token     string
	Username  string
	UserAgent string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// SessionRepository defines the port for session persistence operations.
type SessionRepository interface {
	Create(ctx context.Context, s Session) error
	GetByToken(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context) error
}
