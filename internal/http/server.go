// Package http provides the API HTTP server, routing, and shared middleware.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/healthtracker/backend/internal/auth/http"
	profileHTTP "github.com/healthtracker/backend/internal/profile/http"
)

// Server represents the API HTTP server.
type Server struct {
	server *http.Server
	router *gin.Engine
	db     *sql.DB
	logger *slog.Logger
}

// NewServer creates a new HTTP server. Routes are attached separately via
// SetupRoutes before Start.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Routes bundles the handlers and route-level middleware the server exposes.
//
// RateLimitMiddleware applies to the unauthenticated credential endpoints
// (register, login, refresh) and may be nil when rate limiting is disabled.
type Routes struct {
	AuthHandler         *authHTTP.AuthHandler
	ProfileHandler      *profileHTTP.ProfileHandler
	AuthMiddleware      gin.HandlerFunc
	RateLimitMiddleware gin.HandlerFunc
	CORSEnabled         bool
	CORSAllowOrigins    string
}

// SetupRoutes builds the router with global middleware and the API routes.
func (s *Server) SetupRoutes(routes Routes) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(
		routes.CORSEnabled, routes.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	auth := v1.Group("/auth")
	if routes.RateLimitMiddleware != nil {
		auth.POST("/register", routes.RateLimitMiddleware, routes.AuthHandler.RegisterHandler)
		auth.POST("/login", routes.RateLimitMiddleware, routes.AuthHandler.LoginHandler)
		auth.POST("/refresh", routes.RateLimitMiddleware, routes.AuthHandler.RefreshHandler)
	} else {
		auth.POST("/register", routes.AuthHandler.RegisterHandler)
		auth.POST("/login", routes.AuthHandler.LoginHandler)
		auth.POST("/refresh", routes.AuthHandler.RefreshHandler)
	}
	auth.POST("/logout", routes.AuthMiddleware, routes.AuthHandler.LogoutHandler)
	auth.PUT("/password", routes.AuthMiddleware, routes.AuthHandler.ChangePasswordHandler)

	profile := v1.Group("/profile", routes.AuthMiddleware)
	profile.PUT("", routes.ProfileHandler.UpsertProfileHandler)
	profile.GET("", routes.ProfileHandler.GetProfileHandler)

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can serve traffic, including
// database connectivity.
func (s *Server) readinessHandler(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Error("readiness check failed", slog.Any("error", err))
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": "error"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": "ok"},
	})
}

// Start starts the HTTP server. SetupRoutes must have been called first.
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
