package auth

import (
	"errors"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType tells access and refresh tokens apart
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("token has expired")
	ErrInvalidTokenType   = errors.New("invalid token type")
	ErrInvalidClaims      = errors.New("invalid token claims")
	ErrMissingUserID      = errors.New("missing user_id in claims")
	ErrMaxRefreshExceeded = errors.New("maximum refresh count exceeded")
	ErrTokenBlacklisted   = errors.New("token has been revoked")
)

// Claims carries the principal of a request
type Claims struct {
	jwt.RegisteredClaims
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	Roles        []string  `json:"roles,omitempty"`
	TokenType    TokenType `json:"token_type"`
	RefreshCount int       `json:"refresh_count,omitempty"`
}

// GetUserUUID parses the user_id claim
func (c *Claims) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}

// GetRemainingTTL is how long the token stays valid, never negative
func (c *Claims) GetRemainingTTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(time.Until(c.ExpiresAt.Time), 0)
}

// Principal is what a token pair is issued for
type Principal struct {
	UserID uuid.UUID
	Email  string
	Name   string
	Roles  []string
}

type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// tokenKey signs and checks one kind of token
type tokenKey struct {
	kind   TokenType
	secret []byte
	ttl    time.Duration
}

func (k tokenKey) sign(claims *Claims) (string, error) {
	claims.TokenType = k.kind
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(k.secret)
}

func (k tokenKey) keyFunc(token *jwt.Token) (any, error) {
	if token.Method != jwt.SigningMethodHS256 {
		return nil, ErrInvalidToken
	}
	return k.secret, nil
}

// JWTService issues and validates HS256 tokens. Access and refresh tokens
// use separate secrets when a refresh secret is configured.
type JWTService struct {
	access     tokenKey
	refresh    tokenKey
	issuer     string
	maxRefresh int
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	refreshSecret := cfg.RefreshSecret
	if refreshSecret == "" {
		refreshSecret = cfg.Secret
	}
	return &JWTService{
		access:     tokenKey{kind: TokenTypeAccess, secret: []byte(cfg.Secret), ttl: cfg.AccessTokenExpiration},
		refresh:    tokenKey{kind: TokenTypeRefresh, secret: []byte(refreshSecret), ttl: cfg.RefreshTokenExpiration},
		issuer:     cfg.Issuer,
		maxRefresh: cfg.MaxRefreshCount,
	}
}

// GenerateTokenPair issues a fresh access and refresh token for p
func (s *JWTService) GenerateTokenPair(p Principal) (*TokenPair, error) {
	return s.issue(p, 0)
}

// RefreshTokenPair exchanges a valid refresh token for a new pair. The
// caller passes the current principal so role changes take effect.
func (s *JWTService) RefreshTokenPair(refreshToken string, current Principal) (*TokenPair, error) {
	claims, err := s.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	switch {
	case claims.RefreshCount >= s.maxRefresh:
		return nil, ErrMaxRefreshExceeded
	case claims.UserID != current.UserID.String():
		return nil, ErrInvalidClaims
	}
	return s.issue(current, claims.RefreshCount+1)
}

func (s *JWTService) ValidateAccessToken(raw string) (*Claims, error) {
	return s.parse(raw, s.access)
}

func (s *JWTService) ValidateRefreshToken(raw string) (*Claims, error) {
	return s.parse(raw, s.refresh)
}

func (s *JWTService) issue(p Principal, refreshCount int) (*TokenPair, error) {
	now := time.Now()
	pair := &TokenPair{
		AccessTokenExpiresAt:  now.Add(s.access.ttl),
		RefreshTokenExpiresAt: now.Add(s.refresh.ttl),
		TokenType:             "Bearer",
	}

	var err error
	pair.AccessToken, err = s.access.sign(&Claims{
		RegisteredClaims: s.registered(p.UserID, now, pair.AccessTokenExpiresAt),
		UserID:           p.UserID.String(),
		Email:            p.Email,
		Name:             p.Name,
		Roles:            p.Roles,
	})
	if err != nil {
		return nil, err
	}

	// roles are reloaded on refresh, so the refresh token does not carry them
	pair.RefreshToken, err = s.refresh.sign(&Claims{
		RegisteredClaims: s.registered(p.UserID, now, pair.RefreshTokenExpiresAt),
		UserID:           p.UserID.String(),
		Email:            p.Email,
		RefreshCount:     refreshCount,
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *JWTService) registered(userID uuid.UUID, now, expires time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    s.issuer,
		Subject:   userID.String(),
		Audience:  jwt.ClaimStrings{s.issuer},
		ExpiresAt: jwt.NewNumericDate(expires),
		NotBefore: jwt.NewNumericDate(now),
		IssuedAt:  jwt.NewNumericDate(now),
	}
}

func (s *JWTService) parse(raw string, key tokenKey) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, key.keyFunc, jwt.WithIssuer(s.issuer))
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, ErrInvalidToken
	case claims.TokenType != key.kind:
		return nil, ErrInvalidTokenType
	case claims.UserID == "":
		return nil, ErrMissingUserID
	}
	return claims, nil
}
