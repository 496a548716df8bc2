package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goldspin/casino-backend/internal/config"
	"golang.org/x/exp/slog"
)

// ServiceAuthMiddleware authenticates machine callers (the wagering core) by
// a shared key in the X-Service-Key header. An unset key closes the intake
// rather than leaving it open.
func ServiceAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	apiKey := []byte(cfg.Jackpot.ServiceAPIKey)
	if len(apiKey) == 0 {
		slog.Error("Service API key is not configured, wager intake disabled")
	}

	return func(c *gin.Context) {
		if len(apiKey) == 0 {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Service credential not configured"})
			return
		}
		provided := c.GetHeader("X-Service-Key")
		if subtle.ConstantTimeCompare([]byte(provided), apiKey) != 1 {
			slog.Warn("Rejected service call with invalid key", "clientIp", c.ClientIP(), "path", c.FullPath())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid service key"})
			return
		}
		c.Next()
	}
}
