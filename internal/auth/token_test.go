package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenService(t *testing.T) {
	_, err := NewTokenService("", 24*time.Hour)
	assert.Error(t, err)

	svc, err := NewTokenService("segredo-de-teste", 24*time.Hour)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestTokenRoundTrip(t *testing.T) {
	svc, err := NewTokenService("segredo-de-teste", 24*time.Hour)
	require.NoError(t, err)

	userID := uuid.New()
	tokenString, err := svc.NewToken(userID)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	token, err := svc.ValidateToken(tokenString)
	require.NoError(t, err)

	got, err := svc.GetUserIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	// Validade negativa emite um token já vencido
	svc, err := NewTokenService("segredo-de-teste", -time.Hour)
	require.NoError(t, err)

	tokenString, err := svc.NewToken(uuid.New())
	require.NoError(t, err)

	_, err = svc.ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	svc1, err := NewTokenService("segredo-a", 24*time.Hour)
	require.NoError(t, err)
	svc2, err := NewTokenService("segredo-b", 24*time.Hour)
	require.NoError(t, err)

	tokenString, err := svc1.NewToken(uuid.New())
	require.NoError(t, err)

	_, err = svc2.ValidateToken(tokenString)
	assert.Error(t, err)
}

func TestValidateTokenGarbage(t *testing.T) {
	svc, err := NewTokenService("segredo-de-teste", 24*time.Hour)
	require.NoError(t, err)

	_, err = svc.ValidateToken("nao-e-um-jwt")
	assert.Error(t, err)
}
