package auth

import (
	"context"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        2,
	})
}

func newTestPrincipal() Principal {
	return Principal{
		UserID: uuid.New(),
		Email:  "lager@example.de",
		Name:   "Lager Team",
		Roles:  []string{"Lager"},
	}
}

func TestNewJWTService_UsesSecretForRefreshIfNotProvided(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "test-secret"})
	assert.Equal(t, []byte("test-secret"), svc.refresh.secret)
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestJWTService()
	p := newTestPrincipal()

	pair, err := svc.GenerateTokenPair(p)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, p.UserID.String(), claims.UserID)
	assert.Equal(t, "lager@example.de", claims.Email)
	assert.Equal(t, "Lager Team", claims.Name)
	assert.Equal(t, []string{"Lager"}, claims.Roles)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Greater(t, claims.GetRemainingTTL(), 14*time.Minute)

	id, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, p.UserID, id)
}

func TestValidate_WrongTokenType(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{
		Secret:                 "shared-secret-for-both-token-types",
		AccessTokenExpiration:  time.Minute,
		RefreshTokenExpiration: time.Hour,
		Issuer:                 "test-issuer",
	})
	pair, err := svc.GenerateTokenPair(newTestPrincipal())
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
	_, err = svc.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidTokenType)
}

func TestValidate_Rejections(t *testing.T) {
	svc := newTestJWTService()

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("foreign secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "another-secret-of-at-least-32-chars", Issuer: "test-issuer", AccessTokenExpiration: time.Minute})
		pair, err := other.GenerateTokenPair(newTestPrincipal())
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "test-issuer",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
			UserID:    uuid.NewString(),
			TokenType: TokenTypeAccess,
		}
		token, err := svc.access.sign(claims)
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("missing user", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "test-issuer"},
			TokenType:        TokenTypeAccess,
		}
		token, err := svc.access.sign(claims)
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrMissingUserID)
	})

	t.Run("none algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "x", TokenType: TokenTypeAccess}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestRefreshTokenPair(t *testing.T) {
	svc := newTestJWTService()
	p := newTestPrincipal()
	pair, err := svc.GenerateTokenPair(p)
	require.NoError(t, err)

	p.Roles = []string{"Lager", "Einkauf"}
	refreshed, err := svc.RefreshTokenPair(pair.RefreshToken, p)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(refreshed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"Lager", "Einkauf"}, claims.Roles)

	refreshClaims, err := svc.ValidateRefreshToken(refreshed.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, 1, refreshClaims.RefreshCount)

	t.Run("limit", func(t *testing.T) {
		second, err := svc.RefreshTokenPair(refreshed.RefreshToken, p)
		require.NoError(t, err)
		_, err = svc.RefreshTokenPair(second.RefreshToken, p)
		assert.ErrorIs(t, err, ErrMaxRefreshExceeded)
	})

	t.Run("other user", func(t *testing.T) {
		_, err := svc.RefreshTokenPair(pair.RefreshToken, newTestPrincipal())
		assert.ErrorIs(t, err, ErrInvalidClaims)
	})
}

func TestInMemoryTokenBlacklist(t *testing.T) {
	ctx := context.Background()
	b := NewInMemoryTokenBlacklist()

	require.NoError(t, b.AddToBlacklist(ctx, "jti-1", time.Hour))
	revoked, err := b.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = b.IsBlacklisted(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)

	clock := time.Now()
	b.now = func() time.Time { return clock }
	require.NoError(t, b.AddToBlacklist(ctx, "jti-short", time.Minute))
	clock = clock.Add(2 * time.Minute)
	revoked, err = b.IsBlacklisted(ctx, "jti-short")
	require.NoError(t, err)
	assert.False(t, revoked)

	// the next revocation sweeps what has expired
	require.NoError(t, b.AddToBlacklist(ctx, "jti-3", time.Hour))
	assert.NotContains(t, b.until, "jti-short")
}
