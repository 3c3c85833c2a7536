package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Limiter counts hits on a key within a window.
type Limiter interface {
	// Hit records one hit on key and returns the count in the current window.
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RedisLimiter is a fixed-window Limiter backed by Redis INCR and EXPIRE.
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

// NewRedisLimiter creates a RedisLimiter storing counters under prefix.
func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: prefix}
}

// Hit increments the counter for key; the window starts on the first hit.
func (l *RedisLimiter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	fullKey := l.prefix + key

	count, err := l.client.Incr(ctx, fullKey).Result()
	if err != nil {
		return 0, fmt.Errorf("rate limit incr: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, fullKey, window).Err(); err != nil {
			return count, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return count, nil
}

// RateLimit rejects a client that exceeds maxRequests within window on the
// same path. Limiter errors let the request through.
func RateLimit(limiter Limiter, maxRequests int, window time.Duration) fiber.Handler {
	if limiter == nil {
		panic("limiter cannot be nil for RateLimit middleware")
	}
	if maxRequests <= 0 || window <= 0 {
		panic("maxRequests and window must be positive for RateLimit middleware")
	}

	return func(c *fiber.Ctx) error {
		key := c.IP() + ":" + c.Path()
		count, err := limiter.Hit(c.UserContext(), key, window)
		if err != nil {
			logrus.WithError(err).Error("RateLimit: limiter unavailable")
			return c.Next()
		}
		if count > int64(maxRequests) {
			logrus.WithFields(logrus.Fields{"ip": c.IP(), "path": c.Path()}).Warn("RateLimit: too many requests")
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many attempts, please try again later")
		}
		return c.Next()
	}
}
