package http

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	authService "github.com/healthtracker/backend/internal/auth/service"
)

// RateLimitMiddleware enforces per-address rate limiting on unauthenticated
// credential endpoints (register, login, refresh) to slow down credential
// stuffing and brute force attacks.
//
// Each client address gets an independent token bucket from the shared
// RateLimiter. The address comes from c.ClientIP(), which resolves the
// X-Forwarded-For chain (first entry), then X-Real-IP, then the direct
// connection address. Gin only trusts the forwarded headers when the peer is
// in the engine's trusted proxy list, so a client cannot spoof its way into a
// fresh bucket from outside the proxy tier.
//
// Response metadata:
//   - Allowed: X-RateLimit-Remaining and X-RateLimit-Reset headers, continues
//   - Denied: 429 Too Many Requests with Retry-After header and a
//     rate_limit_exceeded body, distinct from validation failures
func RateLimitMiddleware(limiter *authService.RateLimiter, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientAddr := c.ClientIP()

		decision := limiter.Allow(clientAddr)
		if !decision.Allowed {
			retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))

			// A sustained stream of these from one address is an attack signal,
			// so the denial is logged loudly with the targeted endpoint.
			logger.Warn("rate limit exceeded",
				slog.String("client_addr", clientAddr),
				slog.String("endpoint", c.FullPath()),
				slog.Int("retry_after", retryAfter))

			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.Header("X-RateLimit-Remaining", "0")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limit_exceeded",
				"message": "Too many requests from this address. Please retry after the specified delay.",
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", decision.Remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", decision.ResetAt.Unix()))

		c.Next()
	}
}
