package middleware

import (
	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/gin-gonic/gin"
)

func testUser(roles ...identity.Role) *identity.User {
	return &identity.User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             "anna@example.com",
		Name:              "Anna",
		Roles:             roles,
		IsActive:          true,
	}
}

// withUser stands in for Auth
func withUser(u *identity.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(UserKey, u)
		c.Next()
	}
}
