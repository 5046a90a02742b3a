package auth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"landkit/internal/auth"
)

const testSecret = "test-secret-for-token-signing"

func TestIssueAndVerifyToken(t *testing.T) {
	token, err := auth.IssueToken(testSecret, time.Hour, 42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := auth.VerifyToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "42", claims.Subject)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestIssueTokenRequiresSecret(t *testing.T) {
	_, err := auth.IssueToken("", time.Hour, 1)
	assert.Error(t, err)
}

func TestVerifyTokenRejectsWrongSecret(t *testing.T) {
	token, err := auth.IssueToken(testSecret, time.Hour, 7)
	require.NoError(t, err)

	_, err = auth.VerifyToken("another-secret", token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyTokenRejectsExpired(t *testing.T) {
	token, err := auth.IssueToken(testSecret, -time.Minute, 7)
	require.NoError(t, err)

	_, err = auth.VerifyToken(testSecret, token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	_, err := auth.VerifyToken(testSecret, "not.a.token")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	_, err = auth.VerifyToken(testSecret, "")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyTokenRejectsMissingUserID(t *testing.T) {
	// A token minted for user 0 carries no usable identity.
	token, err := auth.IssueToken(testSecret, time.Hour, 0)
	require.NoError(t, err)

	_, err = auth.VerifyToken(testSecret, token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
