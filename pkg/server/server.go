// Package server provides the HTTP API over the validation pipeline.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soundprediction/veridoc"
	"github.com/soundprediction/veridoc/pkg/config"
	"github.com/soundprediction/veridoc/pkg/server/handlers"
	"github.com/soundprediction/veridoc/pkg/types"
)

// Server represents the HTTP server
type Server struct {
	config  *config.Config
	router  *gin.Engine
	veridoc veridoc.Veridoc
	server  *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, client veridoc.Veridoc) *Server {
	return &Server{
		config:  cfg,
		veridoc: client,
	}
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	// Set gin mode
	gin.SetMode(s.config.Server.Mode)

	// Create router
	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(contextMiddleware())

	// Setup routes
	s.setupRoutes()

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

// setupRoutes sets up all the routes
func (s *Server) setupRoutes() {
	// Create handlers
	healthHandler := handlers.NewHealthHandler(s.veridoc)
	queryHandler := handlers.NewQueryHandler(s.veridoc)
	adminHandler := handlers.NewAdminHandler(s.veridoc)

	// Health and ops endpoints
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/ready", healthHandler.ReadinessCheck)
	s.router.GET("/stats", healthHandler.Stats)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/query", queryHandler.Query)
		v1.POST("/query/compliance", queryHandler.QueryCompliance)
		v1.POST("/reload", adminHandler.Reload)
	}
}

// Router returns the underlying gin engine, mostly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the server
func (s *Server) Start() error {
	fmt.Printf("Starting server on %s\n", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	fmt.Println("Stopping server...")
	return s.server.Shutdown(ctx)
}

// contextMiddleware tags each request with a query id and source so the
// pipeline's structured logs can be correlated with API calls.
func contextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		queryID := uuid.New().String()
		ctx = context.WithValue(ctx, types.ContextKeyQueryID, queryID)
		c.Header("X-Query-ID", queryID)

		if userID := c.GetHeader("X-User-ID"); userID != "" {
			ctx = context.WithValue(ctx, types.ContextKeyUserID, userID)
		}
		ctx = context.WithValue(ctx, types.ContextKeyRequestSource, "server")

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
