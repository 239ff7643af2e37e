package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestAPI_BasePath(t *testing.T) {
	assert.Equal(t, "/api/v1", API{}.BasePath())
	assert.Equal(t, "/api/v2", API{Version: "v2"}.BasePath())
}

func TestAPI_MiddlewareOrder(t *testing.T) {
	var trail []string
	step := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) {
			trail = append(trail, name)
			c.Next()
		}
	}

	engine := gin.New()
	API{Middleware: []gin.HandlerFunc{step("api")}}.Mount(engine, Resource{
		Name:       "test",
		Prefix:     "/test",
		Middleware: []gin.HandlerFunc{step("resource")},
		Routes: []Route{get("/ping", func(c *gin.Context) {
			trail = append(trail, "handler")
			c.String(http.StatusOK, "pong")
		})},
	})

	w := serve(engine, http.MethodGet, "/api/v1/test/ping")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
	assert.Equal(t, []string{"api", "resource", "handler"}, trail)

	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/test/ping").Code)
}

func TestResource_Mount(t *testing.T) {
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	orders := Resource{
		Name:   "orders",
		Prefix: "/orders",
		Routes: []Route{get("", ok), post("", ok), put("/:id/status", ok)},
		Children: []Resource{{
			Name:   "lines",
			Prefix: "/:id/lines",
			Routes: []Route{get("", ok)},
		}},
	}

	engine := gin.New()
	orders.Mount(engine.Group("/api"))

	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/orders").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodPost, "/api/orders").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodPut, "/api/orders/1/status").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/api/orders/1/lines").Code)
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodPost, "/api/orders/1/status").Code)
}

func TestResource_CollectionGate(t *testing.T) {
	orders := Resource{
		Name:       "orders",
		Prefix:     "/orders",
		Collection: identity.CollectionOrders,
		Routes:     []Route{get("", func(c *gin.Context) { c.Status(http.StatusOK) })},
	}

	withRoles := func(roles ...identity.Role) *gin.Engine {
		engine := gin.New()
		engine.Use(func(c *gin.Context) {
			u := &identity.User{Roles: roles, IsActive: true}
			c.Set(middleware.UserKey, u)
			c.Request = c.Request.WithContext(identity.WithUser(c.Request.Context(), u))
			c.Next()
		})
		orders.Mount(engine.Group(""))
		return engine
	}

	assert.Equal(t, http.StatusOK, serve(withRoles(identity.RoleSales), http.MethodGet, "/orders").Code)
	assert.Equal(t, http.StatusForbidden, serve(withRoles(identity.RoleWarehouse), http.MethodGet, "/orders").Code)
	assert.Equal(t, http.StatusOK, serve(withRoles(identity.RoleSuperAdmin), http.MethodGet, "/orders").Code)
}
