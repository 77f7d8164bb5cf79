package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// WithdrawRateLimit caps withdrawal requests per user per minute using Redis
// when available. Without Redis it is a pass-through.
func WithdrawRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next() // no-op without Redis
		}
		var req struct {
			UserID string `json:"user_id"`
		}
		_ = c.BodyParser(&req)
		subject := strings.TrimSpace(req.UserID)
		if subject == "" {
			subject = c.IP()
		}
		key := "rl:withdraw:" + subject
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err == nil && cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if err != nil {
			return c.Next() // fail-open on cache errors
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many withdrawal requests, try again later")
		}
		return c.Next()
	}
}
