// Package http wires the gin router: middleware stack, account routes,
// and the health endpoint.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/backend-template/internal/audit"
	"github.com/mrlokans/backend-template/internal/auth"
	"github.com/mrlokans/backend-template/internal/config"
	"github.com/mrlokans/backend-template/internal/database"
	"github.com/mrlokans/backend-template/internal/httperr"
)

// RouterConfig carries all dependencies needed to build the router.
type RouterConfig struct {
	Database     *database.Database
	AuthService  *auth.Service
	TokenService *auth.TokenService
	AuditService *audit.Service
	RateLimiter  *auth.RateLimiter
	Config       *config.Config
	Logger       *slog.Logger
	Version      string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())
	router.Use(CORSMiddleware(cfg.Config.CORS))

	// Centralized error translation: the single exit path for failures
	router.Use(httperr.Handler(cfg.Logger, cfg.Config.IsProduction()))

	router.NoRoute(httperr.NoRoute)

	healthController := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", healthController.Status)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to the backend template!"})
	})

	userController := NewUserController(cfg.AuthService, cfg.AuditService, cfg.RateLimiter)
	userController.RegisterRoutes(router, cfg.TokenService)

	return router
}
