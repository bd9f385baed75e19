package handlers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateAccessToken(t *testing.T) {
	cfg := JWTConfig{Secret: []byte("test-secret"), AccessTokenTTL: time.Hour}

	token, expiresAt, err := GenerateAccessToken(cfg, "user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := ValidateAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, TokenIssuer, claims.Issuer)
}

func TestGenerateAccessToken_RequiresUser(t *testing.T) {
	cfg := JWTConfig{Secret: []byte("s"), AccessTokenTTL: time.Hour}

	_, _, err := GenerateAccessToken(cfg, "")
	assert.Error(t, err)
	_, _, err = GenerateAccessToken(cfg, "two words")
	assert.Error(t, err)
}

func TestValidateAccessToken_Invalid(t *testing.T) {
	cfg := JWTConfig{Secret: []byte("test-secret"), AccessTokenTTL: time.Hour}

	expired, _, err := GenerateAccessToken(JWTConfig{Secret: cfg.Secret, AccessTokenTTL: -time.Minute}, "user-1")
	require.NoError(t, err)

	otherKey, _, err := GenerateAccessToken(JWTConfig{Secret: []byte("other"), AccessTokenTTL: time.Hour}, "user-1")
	require.NoError(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, CustomClaims{
		UserID:           "user-1",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else"},
	})
	foreignIssuer, err := foreign.SignedString(cfg.Secret)
	require.NoError(t, err)

	noUser := jwt.NewWithClaims(jwt.SigningMethodHS256, CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{Issuer: TokenIssuer},
	})
	noUserToken, err := noUser.SignedString(cfg.Secret)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "expired", token: expired},
		{name: "wrong secret", token: otherKey},
		{name: "foreign issuer", token: foreignIssuer},
		{name: "no user", token: noUserToken},
		{name: "garbage", token: "not.a.token"},
		{name: "empty", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateAccessToken(cfg, tt.token)
			assert.Error(t, err)
		})
	}
}
