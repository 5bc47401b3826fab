package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/authgate/internal/config"
	"github.com/allisson/authgate/internal/gateway"
	"github.com/allisson/authgate/internal/metrics"
)

// GatewayServer fronts the upstream services. Every request passes through
// the authentication filter before being proxied; only the gateway's own
// health endpoint is mounted ahead of the filter.
type GatewayServer struct {
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewGatewayServer creates the gateway server with the filter applied to all
// proxied traffic.
func NewGatewayServer(
	cfg *config.Config,
	filter *gateway.AuthFilter,
	upstreams *gateway.UpstreamRouter,
	metricsProvider *metrics.Provider,
	logger *slog.Logger,
) *GatewayServer {
	router := gin.New()

	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(gin.Recovery())
	router.Use(CustomLoggerMiddleware(logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	// Registered before the filter so the probe works without a token.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.Use(filter.Middleware())
	router.NoRoute(upstreams.Handler())

	return &GatewayServer{
		router: router,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.GatewayHost, cfg.GatewayPort),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *GatewayServer) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the gateway server.
func (s *GatewayServer) Start(ctx context.Context) error {
	s.logger.Info("starting gateway server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start gateway server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the gateway server.
func (s *GatewayServer) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down gateway server")
	return s.server.Shutdown(ctx)
}
