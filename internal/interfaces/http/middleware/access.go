package middleware

import (
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequireCollection admits users whose roles grant access to the collection.
// It must run after Auth.
func RequireCollection(slug string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			abortWithError(c, shared.CodeUnauthorized, "Authentication required")
			return
		}
		if !identity.CanAccessCollection(user, slug) {
			logger.FromContext(c.Request.Context()).Info("collection access denied",
				zap.String("collection", slug),
				zap.Strings("roles", user.RoleNames()),
			)
			abortWithError(c, shared.CodeForbidden, "Access to "+slug+" is forbidden")
			return
		}
		c.Next()
	}
}
