package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/auth"
	"go.uber.org/zap"
)

var errInvalidCredentials = shared.NewDomainError(shared.CodeUnauthorized, "Invalid email or password")

// AuthService handles authentication operations
type AuthService struct {
	users     identity.UserRepository
	jwt       *auth.JWTService
	blacklist auth.TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(users identity.UserRepository, jwt *auth.JWTService, blacklist auth.TokenBlacklist, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, jwt: jwt, blacklist: blacklist, logger: logger}
}

// Login checks the credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown user", zap.String("email", email))
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		s.logger.Warn("Login attempt for deactivated account", zap.String("email", email))
		return nil, shared.NewDomainError(shared.CodeForbidden, "Account has been deactivated")
	}
	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("email", email))
		return nil, errInvalidCredentials
	}

	pair, err := s.jwt.GenerateTokenPair(principalOf(user))
	if err != nil {
		return nil, err
	}
	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.Strings("roles", user.RoleNames()))
	return tokenResponse(pair, user), nil
}

// Refresh exchanges a refresh token for a new pair with the user's current roles
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	claims, err := s.jwt.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeUnauthorized, err.Error())
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}
	user, err := s.activeUser(ctx, claims)
	if err != nil {
		return nil, err
	}
	pair, err := s.jwt.RefreshTokenPair(req.RefreshToken, principalOf(user))
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeUnauthorized, err.Error())
	}
	// a refresh token is single use
	if err := s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL()); err != nil {
		return nil, err
	}
	return tokenResponse(pair, user), nil
}

// Logout revokes the access token the request was made with
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}
	return s.blacklist.AddToBlacklist(ctx, claims.ID, claims.GetRemainingTTL())
}

// Authenticate resolves a bearer token to the acting user
func (s *AuthService) Authenticate(ctx context.Context, token string) (*identity.User, *auth.Claims, error) {
	claims, err := s.jwt.ValidateAccessToken(token)
	if err != nil {
		return nil, nil, shared.NewDomainError(shared.CodeUnauthorized, err.Error())
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, nil, err
	}
	user, err := s.activeUser(ctx, claims)
	if err != nil {
		return nil, nil, err
	}
	return user, claims, nil
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return err
	}
	if revoked {
		return shared.NewDomainError(shared.CodeUnauthorized, auth.ErrTokenBlacklisted.Error())
	}
	return nil
}

func (s *AuthService) activeUser(ctx context.Context, claims *auth.Claims) (*identity.User, error) {
	id, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeUnauthorized, auth.ErrInvalidClaims.Error())
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError(shared.CodeUnauthorized, "User no longer exists")
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.NewDomainError(shared.CodeUnauthorized, "Account has been deactivated")
	}
	return user, nil
}

func principalOf(u *identity.User) auth.Principal {
	return auth.Principal{UserID: u.ID, Email: u.Email, Name: u.Name, Roles: u.RoleNames()}
}

func tokenResponse(pair *auth.TokenPair, u *identity.User) *TokenResponse {
	return &TokenResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User:                  ToUserResponse(u),
	}
}
