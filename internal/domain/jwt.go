package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims represents the JWT claims carried by a client session
type SessionClaims struct {
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// Namespace returns the storage namespace owned by the session
func (c *SessionClaims) Namespace() string {
	return StorageNamespace + ":" + c.SessionID
}
