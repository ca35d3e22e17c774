package app

import (
	"fmt"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/healthtracker/backend/internal/auth/http"
	authRepository "github.com/healthtracker/backend/internal/auth/repository"
	authService "github.com/healthtracker/backend/internal/auth/service"
	authUseCase "github.com/healthtracker/backend/internal/auth/usecase"
)

// JWTService returns the JWT service for token minting and verification.
func (c *Container) JWTService() *authService.JWTService {
	c.jwtServiceInit.Do(func() {
		c.jwtService = authService.NewJWTService(
			c.config.JWTSigningSecret,
			c.config.JWTIssuer,
			c.config.JWTAudience,
			c.config.AccessTokenExpiration,
			c.config.RefreshTokenExpiration,
		)
	})
	return c.jwtService
}

// RateLimiter returns the shared per-address rate limiter.
func (c *Container) RateLimiter() *authService.RateLimiter {
	c.rateLimiterInit.Do(func() {
		c.rateLimiter = authService.NewRateLimiter(
			c.config.RateLimitRefillPerSec,
			c.config.RateLimitCapacity,
		)
	})
	return c.rateLimiter
}

// RateLimitMiddleware returns the rate limit middleware for credential
// endpoints, or nil when rate limiting is disabled.
func (c *Container) RateLimitMiddleware() gin.HandlerFunc {
	if !c.config.RateLimitEnabled {
		return nil
	}
	return authHTTP.RateLimitMiddleware(c.RateLimiter(), c.Logger())
}

// RevocationRepository returns the revocation repository based on database driver.
func (c *Container) RevocationRepository() (authUseCase.RevocationRepository, error) {
	var err error
	c.revocationRepoInit.Do(func() {
		c.revocationRepo, err = c.initRevocationRepository()
		if err != nil {
			c.initErrors["revocationRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["revocationRepo"]; exists {
		return nil, storedErr
	}
	return c.revocationRepo, nil
}

// TokenUseCase returns the token use case.
func (c *Container) TokenUseCase() (authUseCase.TokenUseCase, error) {
	var err error
	c.tokenUseCaseInit.Do(func() {
		c.tokenUseCase, err = c.initTokenUseCase()
		if err != nil {
			c.initErrors["tokenUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["tokenUseCase"]; exists {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

// AuthHandler returns the auth HTTP handler.
func (c *Container) AuthHandler() (*authHTTP.AuthHandler, error) {
	var err error
	c.authHandlerInit.Do(func() {
		c.authHandler, err = c.initAuthHandler()
		if err != nil {
			c.initErrors["authHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authHandler"]; exists {
		return nil, storedErr
	}
	return c.authHandler, nil
}

// AuthenticationMiddleware returns the Bearer token authentication middleware.
func (c *Container) AuthenticationMiddleware() (gin.HandlerFunc, error) {
	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for authentication middleware: %w", err)
	}
	return authHTTP.AuthenticationMiddleware(tokenUseCase, c.Logger()), nil
}

// initRevocationRepository creates the revocation repository based on the database driver.
func (c *Container) initRevocationRepository() (authUseCase.RevocationRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for revocation repository: %w", err)
	}

	// Select the appropriate repository based on the database driver
	switch c.config.DBDriver {
	case "mysql":
		return authRepository.NewMySQLRevocationRepository(db), nil
	case "postgres":
		return authRepository.NewPostgreSQLRevocationRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initTokenUseCase creates the token use case with all its dependencies.
func (c *Container) initTokenUseCase() (authUseCase.TokenUseCase, error) {
	revocationRepo, err := c.RevocationRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get revocation repository for token use case: %w", err)
	}

	baseUseCase := authUseCase.NewTokenUseCase(
		c.config,
		c.JWTService(),
		revocationRepo,
	)

	// Wrap with metrics decorator if metrics are enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for token use case: %w", err)
		}
		return authUseCase.NewTokenUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initAuthHandler creates the auth HTTP handler with all its dependencies.
func (c *Container) initAuthHandler() (*authHTTP.AuthHandler, error) {
	userUseCase, err := c.UserUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get user use case for auth handler: %w", err)
	}

	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for auth handler: %w", err)
	}

	return authHTTP.NewAuthHandler(userUseCase, tokenUseCase, c.Logger()), nil
}
