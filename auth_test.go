package main

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_ProducesVerifiableBcryptHash(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$2"))
	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestHashPassword_SaltsEachHash(t *testing.T) {
	h1, err := HashPassword("same")
	require.NoError(t, err)
	h2, err := HashPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestCheckPassword_RejectsGarbageHash(t *testing.T) {
	assert.False(t, CheckPassword("not-a-hash", "anything"))
}

func TestGenerateToken_ClaimsAndExpiry(t *testing.T) {
	raw, err := GenerateToken(7, "test-secret")
	require.NoError(t, err)

	token, err := jwt.Parse(raw, func(tok *jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	require.True(t, token.Valid)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, float64(7), claims["user_id"])

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.True(t, exp.After(time.Now()))
	assert.True(t, exp.Before(time.Now().Add(25*time.Hour)))
}

func TestGenerateToken_RejectsWrongSecret(t *testing.T) {
	raw, err := GenerateToken(7, "test-secret")
	require.NoError(t, err)

	_, err = jwt.Parse(raw, func(tok *jwt.Token) (any, error) {
		return []byte("other-secret"), nil
	})
	assert.Error(t, err)
}
