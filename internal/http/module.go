// Package http assembles the HTTP layer: modules declare their routes, App
// carries the wired dependencies, and the router mounts everything.
package http

import (
	"salescrm_backend/platform/config"

	"github.com/gin-gonic/gin"
)

// Module is a bounded context with an HTTP surface. The router never knows
// individual endpoints; it hands each module a RouterContext and lets it
// mount itself.
type Module interface {
	// Name identifies the module in logs.
	Name() string
	// RegisterRoutes mounts the module's endpoints onto the shared groups.
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext bundles what modules need to register routes, so
// RegisterRoutes keeps a single parameter.
type RouterContext struct {
	// Engine is the root gin engine, for modules needing engine-level hooks.
	Engine *gin.Engine
	// V1 is the unauthenticated /api/v1 group.
	V1 *gin.RouterGroup
	// Protected is /api/v1 behind JWT auth.
	Protected *gin.RouterGroup
	// Admin is /api/v1/admin behind JWT auth plus the admin role gate.
	Admin *gin.RouterGroup
	// Config exposes only the JWT settings modules may need.
	Config config.JWTConfig
	// AuthMiddleware guards any extra group a module creates itself.
	AuthMiddleware gin.HandlerFunc
}
