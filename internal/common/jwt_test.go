package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	SetJWTSecret("unit-test-secret")

	token, err := GenerateToken("u-123", "Alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u-123", claims.UserID)
	assert.Equal(t, "Alice", claims.DisplayName)
	assert.Equal(t, "pawstogether", claims.Issuer)
}

func TestValidToken_Garbage(t *testing.T) {
	SetJWTSecret("unit-test-secret")

	_, err := ValidToken("not.a.token")
	assert.Error(t, err)
}

func TestValidToken_WrongSecret(t *testing.T) {
	SetJWTSecret("secret-one")
	token, err := GenerateToken("u-1", "Bob")
	require.NoError(t, err)

	SetJWTSecret("secret-two")
	_, err = ValidToken(token)
	assert.Error(t, err)
}
