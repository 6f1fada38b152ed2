// Package entrypoint wires the components together and runs the server.
package entrypoint

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/backend-template/internal/audit"
	"github.com/mrlokans/backend-template/internal/auth"
	"github.com/mrlokans/backend-template/internal/config"
	"github.com/mrlokans/backend-template/internal/database"
	auditrepo "github.com/mrlokans/backend-template/internal/database/audit"
	usersrepo "github.com/mrlokans/backend-template/internal/database/users"
	http_controllers "github.com/mrlokans/backend-template/internal/http"
	"github.com/mrlokans/backend-template/internal/scheduler"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// NewLogger builds the process-wide structured logger from config.
func NewLogger(cfg config.Log) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, logger *slog.Logger, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		logger.Info("starting server",
			slog.String("host", cfg.HTTP.Host),
			slog.Int("port", int(cfg.HTTP.Port)),
			slog.String("mode", string(cfg.HTTP.Mode)))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server", slog.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	logger.Info("server exiting")
}

// Run initializes every component and starts the server.
func Run(cfg *config.Config, version string) {
	logger := NewLogger(cfg.Log)
	logger.Info("starting backend-template", slog.String("version", version))

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("error closing database", slog.Any("error", err))
		}
	}()
	logger.Info("database initialized", slog.String("path", cfg.Database.Path))

	// Token secret must survive restarts for issued tokens to stay valid;
	// a generated one only lasts for this process.
	tokenSecret := cfg.Auth.TokenSecret
	if tokenSecret == "" {
		tokenSecret, err = auth.GenerateTokenSecret()
		if err != nil {
			log.Fatalf("Failed to generate token secret: %v", err)
		}
		logger.Warn("generated ephemeral token secret (set TOKEN_SECRET to persist tokens across restarts)")
	}

	tokenService := auth.NewTokenService(tokenSecret, cfg.Auth.TokenExpiry)

	userRepo := usersrepo.NewRepository(db.DB)
	authService, err := auth.NewService(userRepo, tokenService, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize auth service: %v", err)
	}

	auditService := audit.NewService(auditrepo.NewRepository(db.DB), logger)

	rateLimiter := auth.NewRateLimiter(cfg.Auth)

	cleanupScheduler := scheduler.NewAuditCleanupScheduler(auditService, cfg.Audit, logger)
	if err := cleanupScheduler.Start(); err != nil {
		log.Fatalf("Failed to start audit cleanup scheduler: %v", err)
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:     db,
		AuthService:  authService,
		TokenService: tokenService,
		AuditService: auditService,
		RateLimiter:  rateLimiter,
		Config:       cfg,
		Logger:       logger,
		Version:      version,
	})

	onShutdown := func(ctx context.Context) {
		cleanupScheduler.Stop()
		rateLimiter.Stop()
	}

	Serve(router, cfg, logger, onShutdown)
}
