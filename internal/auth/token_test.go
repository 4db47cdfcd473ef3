package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	tm := NewTokenManager("super-secret", time.Hour)

	tok, exp, err := tm.GenerateToken("user-123", "alice@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := tm.ParseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID())
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.NotEmpty(t, claims.ID)
}

func TestNewTokenManager_DefaultTTL(t *testing.T) {
	tm := NewTokenManager("s", 0)
	assert.Equal(t, defaultTokenTTL, tm.ttl)
}

func TestParseToken_Expired(t *testing.T) {
	tm := &TokenManager{secret: []byte("secret"), ttl: -time.Minute}

	tok, _, err := tm.GenerateToken("u1", "u1@example.com")
	require.NoError(t, err)

	_, err = tm.ParseToken(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseToken_WrongSecret(t *testing.T) {
	tok, _, err := NewTokenManager("right-secret", time.Hour).GenerateToken("u2", "u2@example.com")
	require.NoError(t, err)

	_, err = NewTokenManager("wrong-secret", time.Hour).ParseToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Garbage(t *testing.T) {
	_, err := NewTokenManager("secret", time.Hour).ParseToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "u3",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour).ParseToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_RequiresSubjectAndExpiry(t *testing.T) {
	secret := []byte("secret")

	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}).SignedString(secret)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: "u4",
	}}).SignedString(secret)
	require.NoError(t, err)

	tm := NewTokenManager("secret", time.Hour)
	_, err = tm.ParseToken(noSub)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = tm.ParseToken(noExp)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
