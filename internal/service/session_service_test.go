package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mansoorceksport/fitcoach/internal/config"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionServiceIssue(t *testing.T) {
	svc := NewSessionService(config.JWTConfig{Secret: "secret", Expiry: time.Hour})

	session, err := svc.Issue()
	require.NoError(t, err)
	_, err = ulid.ParseStrict(session.SessionID)
	require.NoError(t, err)

	claims := &domain.SessionClaims{}
	token, err := jwt.ParseWithClaims(session.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, session.SessionID, claims.SessionID)
	assert.Equal(t, domain.StorageNamespace+":"+session.SessionID, claims.Namespace())

	other, err := svc.Issue()
	require.NoError(t, err)
	assert.NotEqual(t, session.SessionID, other.SessionID)
}

func TestSessionServiceRenew(t *testing.T) {
	svc := NewSessionService(config.JWTConfig{Secret: "secret", Expiry: time.Hour})

	session, err := svc.Issue()
	require.NoError(t, err)

	renewed, err := svc.Renew(session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, session.SessionID, renewed.SessionID)

	_, err = svc.Renew("not-a-ulid")
	assert.Error(t, err)
}
