package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIssueValidateRoundTrip(t *testing.T) {
	manager := NewManager(TokenConfig{Secret: []byte("test-secret")})
	sessionID := uuid.New()

	token, err := manager.Issue(sessionID)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := manager.Validate(token)
	assert.NoError(t, err)
	assert.Equal(t, sessionID, claims.SessionID)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	manager := NewManager(TokenConfig{Secret: []byte("secret-a")})
	token, err := manager.Issue(uuid.New())
	assert.NoError(t, err)

	other := NewManager(TokenConfig{Secret: []byte("secret-b")})
	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsExpired(t *testing.T) {
	manager := NewManager(TokenConfig{Secret: []byte("secret"), TTL: -time.Minute})
	token, err := manager.Issue(uuid.New())
	assert.NoError(t, err)

	_, err = manager.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateRejectsGarbage(t *testing.T) {
	manager := NewManager(TokenConfig{Secret: []byte("secret")})
	_, err := manager.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
