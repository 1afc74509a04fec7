package http

import (
	"context"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gitgate/internal/infrastructure/config"
	"gitgate/internal/interfaces/http/middleware"
	"gitgate/internal/interfaces/http/routes"
	"gitgate/internal/shared/logger"
)

// Router owns the Gin engine and the HTTP server lifecycle.
type Router struct {
	engine *gin.Engine
	server *nethttp.Server
	log    logger.Interface
}

// NewRouter builds the engine, middleware chain and routes from the container.
func NewRouter(cfg *config.Config, container *Container, log logger.Interface) *Router {
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		middleware.Recovery(),
		middleware.Logger(log.Named("http")),
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.ErrorHandler(),
	)

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(nethttp.StatusOK, gin.H{"status": "ok"})
	})

	routes.SetupIntegrationRoutes(engine, &routes.IntegrationRouteConfig{
		IntegrationHandler: container.IntegrationHandler,
		AuthMiddleware:     container.AuthMiddleware,
		AccessGuard:        container.AccessGuard,
	})

	return &Router{
		engine: engine,
		server: &nethttp.Server{
			Addr:              cfg.Server.GetAddr(),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Engine exposes the underlying engine, mainly for tests.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Start serves until the listener fails or Shutdown is called.
func (r *Router) Start() error {
	r.log.Infow("http server starting", "addr", r.server.Addr)
	if err := r.server.ListenAndServe(); err != nil && err != nethttp.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (r *Router) Shutdown(ctx context.Context) error {
	return r.server.Shutdown(ctx)
}
