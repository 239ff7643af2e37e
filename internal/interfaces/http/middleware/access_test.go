package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRequireCollection(t *testing.T) {
	tests := []struct {
		name       string
		user       *identity.User
		collection string
		status     int
	}{
		{"warehouse role on inventory", testUser(identity.RoleWarehouse), identity.CollectionInventory, http.StatusOK},
		{"sales role on inventory", testUser(identity.RoleSales), identity.CollectionInventory, http.StatusForbidden},
		{"sales role on orders", testUser(identity.RoleSales), identity.CollectionOrders, http.StatusOK},
		{"purchasing role on purchases", testUser(identity.RolePurchasing), identity.CollectionPurchases, http.StatusOK},
		{"super admin anywhere", testUser(identity.RoleSuperAdmin), identity.CollectionPurchases, http.StatusOK},
		{"plain user on orders", testUser(identity.RoleUser), identity.CollectionOrders, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/x", withUser(tt.user), RequireCollection(tt.collection), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusForbidden {
				assert.Equal(t, shared.CodeForbidden, errorCode(t, w))
			}
		})
	}
}

func TestRequireCollection_Anonymous(t *testing.T) {
	router := gin.New()
	router.GET("/x", RequireCollection(identity.CollectionOrders), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
