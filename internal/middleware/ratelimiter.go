package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/saleswise/backend-go/internal/config"
)

// RateLimiter counts attempts per key in fixed windows
type RateLimiter interface {
	// Allow records an attempt for key.
	// Returns: allowed bool, remaining attempts in the window, error
	Allow(ctx context.Context, key string) (bool, int64, error)

	// Close releases resources owned by the limiter
	Close() error
}

type redisRateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewRateLimiter creates a Redis-based rate limiter on an established client
func NewRateLimiter(client *redis.Client, cfg *config.Config, logger *slog.Logger) RateLimiter {
	window := time.Duration(cfg.AuthRateWindow) * time.Second
	if window <= 0 {
		window = time.Minute
	}

	logger.Info("✅ [RateLimiter] Using Redis rate limiter",
		"limit", cfg.AuthRateLimit,
		"window", window,
	)

	return &redisRateLimiter{
		client: client,
		limit:  cfg.AuthRateLimit,
		window: window,
		now:    time.Now,
		logger: logger,
	}
}

// windowKey generates the Redis key for the current window
// Format: rate:{key}:{window start unix}
func (r *redisRateLimiter) windowKey(key string) string {
	start := r.now().UTC().Truncate(r.window).Unix()
	return fmt.Sprintf("rate:%s:%d", key, start)
}

func (r *redisRateLimiter) Allow(ctx context.Context, key string) (bool, int64, error) {
	// If limit is 0 or negative, unlimited
	if r.limit <= 0 {
		return true, -1, nil
	}

	redisKey := r.windowKey(key)

	pipe := r.client.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, r.window)

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Error("❌ [RateLimiter] Failed to increment attempt count", "error", err, "key", key)
		// On error, allow the request but log it
		return true, r.limit, err
	}

	count := incr.Val()
	remaining := r.limit - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= r.limit, remaining, nil
}

// Close is a no-op: the client belongs to the report cache connection
func (r *redisRateLimiter) Close() error {
	return nil
}

// NoOpRateLimiter is a rate limiter that always allows requests
// Used when Redis is not available
type NoOpRateLimiter struct {
	logger *slog.Logger
}

// NewNoOpRateLimiter creates a no-op rate limiter
func NewNoOpRateLimiter(logger *slog.Logger) RateLimiter {
	logger.Warn("⚠️ [RateLimiter] Using no-op rate limiter - rate limiting is disabled")
	return &NoOpRateLimiter{logger: logger}
}

func (r *NoOpRateLimiter) Allow(ctx context.Context, key string) (bool, int64, error) {
	return true, -1, nil
}

func (r *NoOpRateLimiter) Close() error {
	return nil
}

// LimitByClientIP rejects requests from an IP that exceeded its attempts for scope
func LimitByClientIP(limiter RateLimiter, scope string, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := scope + ":" + c.ClientIP()

		allowed, remaining, err := limiter.Allow(c.Request.Context(), key)
		if err != nil {
			logger.Warn("⚠️ [RateLimiter] Rate limit check failed, allowing request", "error", err)
		}
		if remaining >= 0 {
			c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		}

		if !allowed {
			logger.Warn("🚦 [RateLimiter] Too many attempts", "scope", scope, "ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many attempts, please try again later",
			})
			return
		}

		c.Next()
	}
}
