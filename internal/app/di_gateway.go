package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	authService "github.com/allisson/authgate/internal/auth/service"
	"github.com/allisson/authgate/internal/gateway"
	appHTTP "github.com/allisson/authgate/internal/http"
)

// gatewayComponents groups the gateway side of the container.
type gatewayComponents struct {
	verifier       authService.TokenIssuer
	revocation     gateway.RevocationChecker
	filter         *gateway.AuthFilter
	upstreamRouter *gateway.UpstreamRouter
	server         *appHTTP.GatewayServer

	verifierInit       sync.Once
	revocationInit     sync.Once
	filterInit         sync.Once
	upstreamRouterInit sync.Once
	serverInit         sync.Once
}

// GatewayVerifier returns the local token verifier used by the gateway. It
// shares the signing key loading path with the issuing side, so both
// processes derive the same key from the same configuration.
func (c *Container) GatewayVerifier(ctx context.Context) (authService.TokenIssuer, error) {
	var err error
	c.gateway.verifierInit.Do(func() {
		c.gateway.verifier, err = c.initTokenIssuer(ctx)
		if err != nil {
			c.initErrors["gatewayVerifier"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["gatewayVerifier"]; exists {
		return nil, storedErr
	}
	return c.gateway.verifier, nil
}

// RevocationChecker returns the HTTP client for remote token liveness checks.
func (c *Container) RevocationChecker() gateway.RevocationChecker {
	c.gateway.revocationInit.Do(func() {
		c.gateway.revocation = gateway.NewHTTPRevocationClient(
			c.config.AuthServiceURL,
			c.config.RevocationCheckTimeout,
		)
	})
	return c.gateway.revocation
}

// AuthFilter returns the gateway authentication filter.
func (c *Container) AuthFilter(ctx context.Context) (*gateway.AuthFilter, error) {
	var err error
	c.gateway.filterInit.Do(func() {
		c.gateway.filter, err = c.initAuthFilter(ctx)
		if err != nil {
			c.initErrors["authFilter"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authFilter"]; exists {
		return nil, storedErr
	}
	return c.gateway.filter, nil
}

// UpstreamRouter returns the reverse proxy router for upstream services.
func (c *Container) UpstreamRouter() (*gateway.UpstreamRouter, error) {
	var err error
	c.gateway.upstreamRouterInit.Do(func() {
		c.gateway.upstreamRouter, err = gateway.NewUpstreamRouter(c.config.UpstreamRoutes, c.Logger())
		if err != nil {
			c.initErrors["upstreamRouter"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["upstreamRouter"]; exists {
		return nil, storedErr
	}
	return c.gateway.upstreamRouter, nil
}

// GatewayServer returns the gateway HTTP server instance.
func (c *Container) GatewayServer(ctx context.Context) (*appHTTP.GatewayServer, error) {
	var err error
	c.gateway.serverInit.Do(func() {
		c.gateway.server, err = c.initGatewayServer(ctx)
		if err != nil {
			c.initErrors["gatewayServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["gatewayServer"]; exists {
		return nil, storedErr
	}
	return c.gateway.server, nil
}

// initAuthFilter creates the authentication filter with its dependencies.
func (c *Container) initAuthFilter(ctx context.Context) (*gateway.AuthFilter, error) {
	verifier, err := c.GatewayVerifier(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get verifier for auth filter: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for auth filter: %w", err)
	}

	return gateway.NewAuthFilter(
		verifier,
		c.RevocationChecker(),
		gateway.DefaultPolicy(),
		parseOpenRoutes(c.config.OpenRoutes),
		c.Logger(),
	).WithMetrics(businessMetrics), nil
}

// initGatewayServer creates the gateway server with all its dependencies.
func (c *Container) initGatewayServer(ctx context.Context) (*appHTTP.GatewayServer, error) {
	filter, err := c.AuthFilter(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get auth filter for gateway server: %w", err)
	}

	upstreamRouter, err := c.UpstreamRouter()
	if err != nil {
		return nil, fmt.Errorf("failed to get upstream router for gateway server: %w", err)
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for gateway server: %w", err)
	}

	return appHTTP.NewGatewayServer(c.config, filter, upstreamRouter, metricsProvider, c.Logger()), nil
}

// parseOpenRoutes parses the comma-separated open route prefixes.
func parseOpenRoutes(routes string) []string {
	if routes == "" {
		return nil
	}

	parts := strings.Split(routes, ",")
	prefixes := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			prefixes = append(prefixes, trimmed)
		}
	}
	return prefixes
}
