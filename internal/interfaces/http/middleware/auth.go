package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/auth"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Auth context keys
const (
	ClaimsKey     = "auth_claims"
	UserKey       = "auth_user"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// Authenticator resolves a bearer token to the acting user
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*identity.User, *auth.Claims, error)
}

// AuthConfig holds configuration for the auth middleware
type AuthConfig struct {
	Authenticator Authenticator
	// SkipPaths are served without a token
	SkipPaths []string
	Logger    *zap.Logger
}

// DefaultAuthConfig leaves health checks and the token endpoints open
func DefaultAuthConfig(a Authenticator, logger *zap.Logger) AuthConfig {
	return AuthConfig{
		Authenticator: a,
		SkipPaths: []string{
			"/health",
			"/api/v1/health",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
		},
		Logger: logger,
	}
}

// Auth requires a valid access token. The user is stored in the gin context
// and, through identity.WithUser, in the request context where the
// collection hooks read it.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		token, ok := bearerToken(c.GetHeader(AuthHeaderKey))
		if !ok {
			abortWithError(c, shared.CodeUnauthorized, "Missing or malformed authorization header")
			return
		}

		user, claims, err := cfg.Authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			code, message := authFailure(err)
			if code == dto.ErrCodeInternal {
				log.Error("authentication failed", zap.Error(err))
			} else {
				log.Debug("authentication rejected",
					zap.String("path", c.Request.URL.Path),
					zap.Error(err),
				)
			}
			abortWithError(c, code, message)
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(UserKey, user)

		ctx := identity.WithUser(c.Request.Context(), user)
		ctx = logger.WithContext(ctx, logger.FromContext(ctx).With(zap.String("user_id", user.ID.String())))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	return token, token != ""
}

// authFailure picks the response code for a failed authentication
func authFailure(err error) (string, string) {
	var de *shared.DomainError
	if !errors.As(err, &de) {
		return dto.ErrCodeInternal, "Authentication is unavailable"
	}
	switch de.Message {
	case auth.ErrExpiredToken.Error():
		return dto.ErrCodeTokenExpired, "Token has expired"
	case auth.ErrTokenBlacklisted.Error():
		return dto.ErrCodeTokenRevoked, "Token has been revoked"
	}
	return de.Code, de.Message
}

// GetClaims returns the token claims of the request, nil when unauthenticated
func GetClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// CurrentUser returns the authenticated user, nil when unauthenticated
func CurrentUser(c *gin.Context) *identity.User {
	if v, ok := c.Get(UserKey); ok {
		if u, ok := v.(*identity.User); ok {
			return u
		}
	}
	return nil
}
