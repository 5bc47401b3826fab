package app

import (
	"context"
	"fmt"
	"sync"

	authHTTP "github.com/allisson/authgate/internal/auth/http"
	authRepository "github.com/allisson/authgate/internal/auth/repository"
	authService "github.com/allisson/authgate/internal/auth/service"
	authUseCase "github.com/allisson/authgate/internal/auth/usecase"
	appHTTP "github.com/allisson/authgate/internal/http"
	outboxRepository "github.com/allisson/authgate/internal/outbox/repository"
	outboxUseCase "github.com/allisson/authgate/internal/outbox/usecase"
	principalRepository "github.com/allisson/authgate/internal/principal/repository"
)

// authComponents groups the token service side of the container.
type authComponents struct {
	principalRepo     authUseCase.PrincipalRepository
	tokenRepo         authUseCase.TokenRepository
	outboxRepo        outboxUseCase.OutboxEventRepository
	tokenIssuer       authService.TokenIssuer
	credentialService authService.CredentialService
	useCase           authUseCase.UseCase
	outboxUseCase     outboxUseCase.UseCase
	eventPublisher    *outboxUseCase.PubSubPublisher
	httpServer        *appHTTP.Server
	metricsServer     *appHTTP.MetricsServer

	principalRepoInit     sync.Once
	tokenRepoInit         sync.Once
	outboxRepoInit        sync.Once
	tokenIssuerInit       sync.Once
	credentialServiceInit sync.Once
	useCaseInit           sync.Once
	outboxUseCaseInit     sync.Once
	httpServerInit        sync.Once
	metricsServerInit     sync.Once
}

// PrincipalRepository returns the principal repository based on database driver.
func (c *Container) PrincipalRepository() (authUseCase.PrincipalRepository, error) {
	var err error
	c.auth.principalRepoInit.Do(func() {
		c.auth.principalRepo, err = c.initPrincipalRepository()
		if err != nil {
			c.initErrors["principalRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["principalRepo"]; exists {
		return nil, storedErr
	}
	return c.auth.principalRepo, nil
}

// TokenRepository returns the token ledger repository based on database driver.
func (c *Container) TokenRepository() (authUseCase.TokenRepository, error) {
	var err error
	c.auth.tokenRepoInit.Do(func() {
		c.auth.tokenRepo, err = c.initTokenRepository()
		if err != nil {
			c.initErrors["tokenRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenRepo"]; exists {
		return nil, storedErr
	}
	return c.auth.tokenRepo, nil
}

// OutboxRepository returns the outbox event repository based on database driver.
func (c *Container) OutboxRepository() (outboxUseCase.OutboxEventRepository, error) {
	var err error
	c.auth.outboxRepoInit.Do(func() {
		c.auth.outboxRepo, err = c.initOutboxRepository()
		if err != nil {
			c.initErrors["outboxRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxRepo"]; exists {
		return nil, storedErr
	}
	return c.auth.outboxRepo, nil
}

// TokenIssuer returns the JWT token issuer. The signing key is loaded once,
// from either the environment or the configured KMS keeper.
func (c *Container) TokenIssuer(ctx context.Context) (authService.TokenIssuer, error) {
	var err error
	c.auth.tokenIssuerInit.Do(func() {
		c.auth.tokenIssuer, err = c.initTokenIssuer(ctx)
		if err != nil {
			c.initErrors["tokenIssuer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenIssuer"]; exists {
		return nil, storedErr
	}
	return c.auth.tokenIssuer, nil
}

// CredentialService returns the password hashing service.
func (c *Container) CredentialService() (authService.CredentialService, error) {
	var err error
	c.auth.credentialServiceInit.Do(func() {
		c.auth.credentialService, err = authService.NewCredentialService()
		if err != nil {
			c.initErrors["credentialService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialService"]; exists {
		return nil, storedErr
	}
	return c.auth.credentialService, nil
}

// AuthUseCase returns the authentication use case.
func (c *Container) AuthUseCase(ctx context.Context) (authUseCase.UseCase, error) {
	var err error
	c.auth.useCaseInit.Do(func() {
		c.auth.useCase, err = c.initAuthUseCase(ctx)
		if err != nil {
			c.initErrors["authUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authUseCase"]; exists {
		return nil, storedErr
	}
	return c.auth.useCase, nil
}

// OutboxUseCase returns the outbox relay use case, or nil when no event topic
// is configured.
func (c *Container) OutboxUseCase(ctx context.Context) (outboxUseCase.UseCase, error) {
	var err error
	c.auth.outboxUseCaseInit.Do(func() {
		c.auth.outboxUseCase, err = c.initOutboxUseCase(ctx)
		if err != nil {
			c.initErrors["outboxUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["outboxUseCase"]; exists {
		return nil, storedErr
	}
	return c.auth.outboxUseCase, nil
}

// HTTPServer returns the token API server instance.
func (c *Container) HTTPServer(ctx context.Context) (*appHTTP.Server, error) {
	var err error
	c.auth.httpServerInit.Do(func() {
		c.auth.httpServer, err = c.initHTTPServer(ctx)
		if err != nil {
			c.initErrors["httpServer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.auth.httpServer, nil
}

// MetricsServer returns the metrics server instance, or nil when metrics are
// disabled.
func (c *Container) MetricsServer() (*appHTTP.MetricsServer, error) {
	var err error
	c.auth.metricsServerInit.Do(func() {
		metricsProvider, initErr := c.MetricsProvider()
		if initErr != nil {
			err = initErr
			c.initErrors["metricsServer"] = initErr
			return
		}
		if metricsProvider == nil {
			return
		}
		c.auth.metricsServer = appHTTP.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			metricsProvider,
		)
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.auth.metricsServer, nil
}

// initPrincipalRepository creates the principal repository instance.
func (c *Container) initPrincipalRepository() (authUseCase.PrincipalRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for principal repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return principalRepository.NewMySQLPrincipalRepository(db), nil
	case "postgres":
		return principalRepository.NewPostgreSQLPrincipalRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initTokenRepository creates the token ledger repository instance.
func (c *Container) initTokenRepository() (authUseCase.TokenRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for token repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return authRepository.NewMySQLTokenRepository(db), nil
	case "postgres":
		return authRepository.NewPostgreSQLTokenRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initOutboxRepository creates the outbox event repository instance.
func (c *Container) initOutboxRepository() (outboxUseCase.OutboxEventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for outbox repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return outboxRepository.NewMySQLOutboxEventRepository(db), nil
	case "postgres":
		return outboxRepository.NewPostgreSQLOutboxEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initTokenIssuer loads the signing key and creates the JWT service.
func (c *Container) initTokenIssuer(ctx context.Context) (authService.TokenIssuer, error) {
	signingKey, err := authService.LoadSigningKey(ctx, c.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}

	return authService.NewJWTService(signingKey, c.config.AccessTokenTTL, c.config.RefreshTokenTTL)
}

// initAuthUseCase creates the authentication use case with all its dependencies.
func (c *Container) initAuthUseCase(ctx context.Context) (authUseCase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for auth use case: %w", err)
	}

	principalRepo, err := c.PrincipalRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get principal repository for auth use case: %w", err)
	}

	tokenRepo, err := c.TokenRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get token repository for auth use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for auth use case: %w", err)
	}

	tokenIssuer, err := c.TokenIssuer(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get token issuer for auth use case: %w", err)
	}

	credentialService, err := c.CredentialService()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential service for auth use case: %w", err)
	}

	useCase := authUseCase.NewAuthUseCase(
		txManager,
		principalRepo,
		tokenRepo,
		outboxRepo,
		tokenIssuer,
		credentialService,
	)

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for auth use case: %w", err)
	}

	return authUseCase.NewAuthUseCaseWithMetrics(useCase, businessMetrics), nil
}

// initOutboxUseCase creates the outbox relay with its publisher. Returns nil
// when no event topic is configured.
func (c *Container) initOutboxUseCase(ctx context.Context) (outboxUseCase.UseCase, error) {
	if c.config.EventTopicURL == "" {
		return nil, nil
	}

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for outbox use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for outbox use case: %w", err)
	}

	publisher, err := outboxUseCase.NewPubSubPublisher(ctx, c.config.EventTopicURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create event publisher: %w", err)
	}
	c.auth.eventPublisher = publisher

	useCaseConfig := outboxUseCase.Config{
		Interval:   c.config.EventRelayInterval,
		BatchSize:  c.config.EventRelayBatchSize,
		MaxRetries: c.config.EventRelayMaxRetries,
	}

	return outboxUseCase.NewOutboxUseCase(useCaseConfig, txManager, outboxRepo, publisher, c.Logger()), nil
}

// initHTTPServer creates the token API server with all its dependencies.
func (c *Container) initHTTPServer(ctx context.Context) (*appHTTP.Server, error) {
	logger := c.Logger()

	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	useCase, err := c.AuthUseCase(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get auth use case for http server: %w", err)
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for http server: %w", err)
	}

	handler := authHTTP.NewAuthHandler(useCase, logger)

	return appHTTP.NewServer(c.config, db, handler, metricsProvider, logger), nil
}
