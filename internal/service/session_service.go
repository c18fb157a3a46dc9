package service

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mansoorceksport/fitcoach/internal/config"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/oklog/ulid/v2"
)

// SessionService issues anonymous session tokens. Each session owns one
// state namespace.
type SessionService struct {
	jwtConfig config.JWTConfig
	now       func() time.Time
}

// NewSessionService creates a new session service
func NewSessionService(jwtConfig config.JWTConfig) *SessionService {
	return &SessionService{
		jwtConfig: jwtConfig,
		now:       time.Now,
	}
}

// Session is returned to a client when a session is opened
type Session struct {
	Token     string    `json:"token"`
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Issue creates a new session with a fresh ULID
func (s *SessionService) Issue() (*Session, error) {
	now := s.now()
	id := ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
	return s.sign(id, now)
}

// Renew issues a new token for an existing session id
func (s *SessionService) Renew(sessionID string) (*Session, error) {
	if _, err := ulid.ParseStrict(sessionID); err != nil {
		return nil, fmt.Errorf("invalid session id: %w", err)
	}
	return s.sign(sessionID, s.now())
}

func (s *SessionService) sign(sessionID string, now time.Time) (*Session, error) {
	expiresAt := now.Add(s.jwtConfig.Expiry)
	claims := domain.SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtConfig.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &Session{
		Token:     signed,
		SessionID: sessionID,
		ExpiresAt: expiresAt.UTC(),
	}, nil
}
