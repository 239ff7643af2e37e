package handler

import (
	"context"

	identityapp "github.com/erp/backoffice/internal/application/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/auth"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AuthService issues and revokes tokens
type AuthService interface {
	Login(ctx context.Context, req identityapp.LoginRequest) (*identityapp.TokenResponse, error)
	Refresh(ctx context.Context, req identityapp.RefreshRequest) (*identityapp.TokenResponse, error)
	Logout(ctx context.Context, claims *auth.Claims) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	auth AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login godoc
// @Summary      User login
// @Description  Exchange e-mail and password for an access and refresh token
// @Tags         auth
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tokens, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tokens)
}

// Refresh godoc
// @Summary      Refresh the token pair
// @Tags         auth
// @Router       /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req identityapp.RefreshRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tokens, err := h.auth.Refresh(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tokens)
}

// Logout revokes the token the request was authenticated with
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		h.Error(c, shared.CodeUnauthorized, "Authentication required")
		return
	}
	if err := h.auth.Logout(c.Request.Context(), claims); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Me returns the authenticated user
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		h.Error(c, shared.CodeUnauthorized, "Authentication required")
		return
	}
	h.Success(c, identityapp.ToUserResponse(user))
}
