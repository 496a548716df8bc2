package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/exp/slog"
)

// RateLimitMiddleware enforces a sliding-window request limit per client,
// backed by a Redis sorted set keyed on client IP so the limit holds across
// instances. Redis being down fails open: wager intake must not stop because
// the limiter did.
func RateLimitMiddleware(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + c.ClientIP()
		now := time.Now()
		cutoff := now.Add(-window)

		pipe := rdb.TxPipeline()
		pipe.ZRemRangeByScore(c.Request.Context(), key, "0", fmt.Sprintf("%d", cutoff.UnixNano()))
		count := pipe.ZCard(c.Request.Context(), key)
		pipe.ZAdd(c.Request.Context(), key, redis.Z{
			Score:  float64(now.UnixNano()),
			Member: uuid.New().String(),
		})
		pipe.Expire(c.Request.Context(), key, window)
		if _, err := pipe.Exec(c.Request.Context()); err != nil {
			slog.Warn("Rate limiter unavailable, allowing request", "error", err)
			c.Next()
			return
		}

		if count.Val() >= int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}
