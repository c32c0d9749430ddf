package app

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"bodymetrics/internal/domain"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates that the provided username or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrSessionNotFound indicates that the requested session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired indicates that the session has expired.
	ErrSessionExpired = errors.New("session expired")
	// ErrNotOwner indicates that an SSO identity is not the configured owner.
	ErrNotOwner = errors.New("identity is not the owner")
)

const sessionTTL = 24 * time.Hour

// AuthService gates the application behind the single owner account.
type AuthService struct {
	owner    domain.Owner
	sessions domain.SessionRepository
	now      func() time.Time
}

// NewAuthService creates a new authentication service for owner.
func NewAuthService(owner domain.Owner, sessions domain.SessionRepository) *AuthService {
	return &AuthService{owner: owner, sessions: sessions, now: time.Now}
}

// Login checks the owner's password and creates a session.
func (s *AuthService) Login(ctx context.Context, username, password, userAgent string) (string, error) {
	if s.owner.PasswordHash == "" || !ConstantTimeCompare(username, s.owner.Username) {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.owner.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}
	return s.newSession(ctx, userAgent)
}

// LoginWithEmail creates a session for an identity already verified by SSO.
// Only the owner's email is accepted.
func (s *AuthService) LoginWithEmail(ctx context.Context, email, userAgent string) (string, error) {
	if s.owner.Email == "" || !strings.EqualFold(email, s.owner.Email) {
		return "", ErrNotOwner
	}
	return s.newSession(ctx, userAgent)
}

// Logout invalidates a session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// ValidateSession checks that token is live and was issued to the same user agent.
func (s *AuthService) ValidateSession(ctx context.Context, token, userAgent string) (*domain.Session, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil || session == nil {
		return nil, ErrSessionNotFound
	}

	if s.now().After(session.ExpiresAt) {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	if session.UserAgent != userAgent {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	return session, nil
}

// PruneSessions removes expired sessions.
func (s *AuthService) PruneSessions(ctx context.Context) error {
	return s.sessions.DeleteExpired(ctx)
}

func (s *AuthService) newSession(ctx context.Context, userAgent string) (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	now := s.now()
	err = s.sessions.Create(ctx, domain.Session{
		Token:     token,
		Username:  s.owner.Username,
		UserAgent: userAgent,
		ExpiresAt: now.Add(sessionTTL),
		CreatedAt: now,
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// HashPassword returns the bcrypt hash to configure as the owner password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// ConstantTimeCompare performs a constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
