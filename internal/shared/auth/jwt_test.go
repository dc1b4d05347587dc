package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	token, err := Sign("secret", time.Hour, "user-1", "a@b.com")
	require.NoError(t, err)

	claims, err := Verify("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "a@b.com", claims.Email)
}

func TestVerifyWrongSecret(t *testing.T) {
	token, err := Sign("secret", time.Hour, "user-1", "")
	require.NoError(t, err)

	_, err = Verify("other-secret", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyExpired(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = Verify("secret", signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyGarbage(t *testing.T) {
	_, err := Verify("secret", "not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignRequiresSecretAndSubject(t *testing.T) {
	_, err := Sign("", time.Hour, "user-1", "")
	assert.Error(t, err)

	_, err = Sign("secret", time.Hour, "", "")
	assert.Error(t, err)
}
