// Package routes wires handlers onto the Gin engine.
package routes

import (
	"github.com/gin-gonic/gin"

	"gitgate/internal/interfaces/http/handlers"
	"gitgate/internal/interfaces/http/middleware"
)

// IntegrationRouteConfig holds dependencies for the integration routes.
type IntegrationRouteConfig struct {
	IntegrationHandler *handlers.IntegrationHandler
	AuthMiddleware     *middleware.AuthMiddleware
	AccessGuard        *middleware.AccessGuard
}

// SetupIntegrationRoutes configures the handshake and integration API routes.
func SetupIntegrationRoutes(engine *gin.Engine, cfg *IntegrationRouteConfig) {
	auth := engine.Group("/auth")
	{
		auth.GET("/github", cfg.AuthMiddleware.RequireAuth(), cfg.IntegrationHandler.InitiateHandshake)
		auth.GET("/github/callback", cfg.AuthMiddleware.RequireAuth(), cfg.IntegrationHandler.HandleCallback)
	}

	api := engine.Group("/api", cfg.AuthMiddleware.RequireAuth())
	{
		api.GET("/integration/status", cfg.IntegrationHandler.GetStatus)

		guarded := api.Group("", cfg.AccessGuard.Guard())
		{
			guarded.GET("/repos/:repo_id/access", cfg.IntegrationHandler.CheckRepoAccess)
		}
	}
}
