package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	ward := uint(7)
	token, err := GenerateAccessToken(42, "reviewer", "SUPERVISOR", &ward, testSecret, 5)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token, testSecret)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UserID)
	assert.Equal(t, "reviewer", claims.Username)
	assert.Equal(t, "SUPERVISOR", claims.Role)
	require.NotNil(t, claims.WardID)
	assert.EqualValues(t, 7, *claims.WardID)
}

func TestAccessTokenWithoutWard(t *testing.T) {
	token, err := GenerateAccessToken(42, "clerk", "ADMIN", nil, testSecret, 5)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token, testSecret)
	require.NoError(t, err)
	assert.Nil(t, claims.WardID)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(42, "reviewer", "SUPERVISOR", nil, testSecret, 5)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, "other-secret")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestAccessTokenExpired(t *testing.T) {
	token, err := GenerateAccessToken(42, "reviewer", "SUPERVISOR", nil, testSecret, -1)
	require.NoError(t, err)

	_, err = ValidateAccessToken(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	token, err := GenerateRefreshToken(42, "token-id-1", testSecret, 1)
	require.NoError(t, err)

	claims, err := ValidateRefreshToken(token, testSecret)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UserID)
	assert.Equal(t, "token-id-1", claims.TokenID)
}

func TestTokenTypeMismatch(t *testing.T) {
	refresh, err := GenerateRefreshToken(42, "token-id-1", testSecret, 1)
	require.NoError(t, err)

	// an access-token parse of a refresh token must not yield usable claims
	claims, err := ValidateAccessToken(refresh, testSecret)
	if err == nil {
		assert.Empty(t, claims.Role)
		assert.Empty(t, claims.Username)
	}
}
