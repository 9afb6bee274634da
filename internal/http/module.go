package http

import (
	"callerid_backend/platform/config"

	"github.com/gin-gonic/gin"
)

// Module is a bounded context (contacts, lookup, calllog) that mounts its
// own routes.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext hands modules the route groups built by the router.
type RouterContext struct {
	Engine *gin.Engine
	// V1 is /api/v1 without authentication: lookups, normalize, match, search.
	V1 *gin.RouterGroup
	// Protected is /api/v1 behind a bearer token.
	Protected *gin.RouterGroup
	// Admin is /api/v1/admin behind a token carrying the admin role.
	Admin *gin.RouterGroup

	Config         config.JWTConfig
	AuthMiddleware gin.HandlerFunc
}
