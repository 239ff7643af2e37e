package router

import (
	"net/http"

	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Route is a single endpoint of a resource
type Route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
}

func get(path string, h gin.HandlerFunc) Route  { return Route{http.MethodGet, path, h} }
func post(path string, h gin.HandlerFunc) Route { return Route{http.MethodPost, path, h} }
func put(path string, h gin.HandlerFunc) Route  { return Route{http.MethodPut, path, h} }

// Resource is the set of endpoints below one path prefix. When Collection is
// set, only users whose roles grant that collection get through.
type Resource struct {
	Name       string
	Prefix     string
	Collection string
	Middleware []gin.HandlerFunc
	Routes     []Route
	Children   []Resource
}

// Mount registers the resource and its children on rg
func (r Resource) Mount(rg *gin.RouterGroup) {
	group := rg.Group(r.Prefix)
	if r.Collection != "" {
		group.Use(middleware.RequireCollection(r.Collection))
	}
	group.Use(r.Middleware...)
	for _, rt := range r.Routes {
		group.Handle(rt.Method, rt.Path, rt.Handler)
	}
	for _, child := range r.Children {
		child.Mount(group)
	}
}

// API is the versioned prefix every resource lives under
type API struct {
	Version    string
	Middleware []gin.HandlerFunc
}

func (a API) BasePath() string {
	if a.Version == "" {
		return "/api/v1"
	}
	return "/api/" + a.Version
}

// Mount registers resources below BasePath, behind the API middleware
func (a API) Mount(engine *gin.Engine, resources ...Resource) {
	api := engine.Group(a.BasePath(), a.Middleware...)
	for _, r := range resources {
		r.Mount(api)
	}
}
