package token_test

import (
	"testing"

	"github.com/planupp/planupp/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestGenerateAndValidateJWT(t *testing.T) {
	tok, err := token.GenerateJWT("4f1c2f0a-9f36-4d6e-a2e5-1b6a9e2c7d01", testSecret, 15)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := token.ValidateJWT(tok, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "4f1c2f0a-9f36-4d6e-a2e5-1b6a9e2c7d01", claims.UserID)
	assert.Equal(t, "planupp", claims.Issuer)
}

func TestValidateJWT_WrongSecret(t *testing.T) {
	tok, err := token.GenerateJWT("user-1", testSecret, 15)
	require.NoError(t, err)

	_, err = token.ValidateJWT(tok, "some-other-secret")
	assert.Error(t, err)
}

func TestValidateJWT_Expired(t *testing.T) {
	tok, err := token.GenerateJWT("user-1", testSecret, -1)
	require.NoError(t, err)

	_, err = token.ValidateJWT(tok, testSecret)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}

func TestValidateJWT_Empty(t *testing.T) {
	_, err := token.ValidateJWT("", testSecret)
	assert.Error(t, err)
}
