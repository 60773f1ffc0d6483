package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-32-bytes-long-xxxxx"

// makeToken creates a signed HS256 JWT from the given secret and claims.
func makeToken(secret string, claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, _ := token.SignedString([]byte(secret))
	return signed
}

func TestHS256ValidatorRequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewHS256Validator("")
	require.Error(t, err)

	v, err := NewHS256Validator(testSecret)
	require.NoError(t, err)
	require.NotNil(t, v)
}

func TestHS256ValidatorValidate(t *testing.T) {
	t.Parallel()

	v, err := NewHS256Validator(testSecret)
	require.NoError(t, err)

	token := makeToken(testSecret, jwt.MapClaims{
		"sub":                "sub-123",
		"iss":                "https://idp.example.com",
		"preferred_username": "alice",
		"email":              "alice@example.com",
		"aud":                "teamgate",
		"groups":             []string{"developers", "operators"},
		"exp":                time.Now().Add(time.Hour).Unix(),
	})

	claims, err := v.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "sub-123", claims.Subject)
	assert.Equal(t, "https://idp.example.com", claims.Issuer)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, []string{"teamgate"}, claims.Audience)
	assert.Equal(t, []string{"developers", "operators"}, claims.Groups)
}

func TestHS256ValidatorUsernameFallsBackToSubject(t *testing.T) {
	t.Parallel()

	v, err := NewHS256Validator(testSecret)
	require.NoError(t, err)

	token := makeToken(testSecret, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	claims, err := v.Validate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Nil(t, claims.Groups)
}

func TestHS256ValidatorRejectsBadSignature(t *testing.T) {
	t.Parallel()

	v, err := NewHS256Validator(testSecret)
	require.NoError(t, err)

	token := makeToken("wrong-secret", jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err = v.Validate(context.Background(), token)
	require.Error(t, err)
}

func TestHS256ValidatorRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	v, err := NewHS256Validator(testSecret)
	require.NoError(t, err)

	token := makeToken(testSecret, jwt.MapClaims{
		"sub": "alice",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	_, err = v.Validate(context.Background(), token)
	require.Error(t, err)
}

func TestHS256ValidatorRejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()

	v, err := NewHS256Validator(testSecret)
	require.NoError(t, err)

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "alice"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = v.Validate(context.Background(), signed)
	require.Error(t, err)
}
