package middleware

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/platepal/internal/nutrition"
	"github.com/redis/go-redis/v9"
)

// PremiumLookup reports whether a user currently has premium access
type PremiumLookup func(ctx context.Context, userID string) (bool, error)

// RateLimitConfig defines a per-user daily allowance
type RateLimitConfig struct {
	KeyPrefix    string
	FreeLimit    int64
	PremiumLimit int64
	// Location decides where the daily window resets
	Location *time.Location
}

// RateLimiter counts requests per user per calendar day in Redis
type RateLimiter struct {
	redis     *redis.Client
	config    RateLimitConfig
	isPremium PremiumLookup
	now       func() time.Time
}

// NewRateLimiter creates a daily limiter. isPremium may be nil, in which case
// every user gets the free allowance.
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig, isPremium PremiumLookup) *RateLimiter {
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &RateLimiter{
		redis:     redisClient,
		config:    config,
		isPremium: isPremium,
		now:       time.Now,
	}
}

// Usage is the outcome of one quota check
type Usage struct {
	Allowed   bool
	Limit     int64
	Remaining int64
	Reset     time.Time
}

// limitFor resolves the user's allowance. A failed lookup falls back to the
// free tier.
func (rl *RateLimiter) limitFor(ctx context.Context, userID string) int64 {
	if rl.isPremium == nil {
		return rl.config.FreeLimit
	}
	premium, err := rl.isPremium(ctx, userID)
	if err != nil {
		log.Printf("[RateLimit] Premium lookup failed for user %s: %v", userID, err)
		return rl.config.FreeLimit
	}
	if premium {
		return rl.config.PremiumLimit
	}
	return rl.config.FreeLimit
}

// IsAllowed counts one request and reports whether it fits the allowance
func (rl *RateLimiter) IsAllowed(ctx context.Context, userID string) (Usage, error) {
	now := rl.now().In(rl.config.Location)
	dayStart := nutrition.StartOfDay(now)
	reset := dayStart.AddDate(0, 0, 1)
	key := fmt.Sprintf("%s:%s:%s", rl.config.KeyPrefix, userID, nutrition.FormatDay(dayStart))

	limit := rl.limitFor(ctx, userID)

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	// relative to the same clock that picked the key, not Redis' wall clock
	pipe.Expire(ctx, key, reset.Sub(now))
	if _, err := pipe.Exec(ctx); err != nil {
		return Usage{Limit: limit, Reset: reset}, err
	}

	count := incrCmd.Val()
	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return Usage{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: remaining,
		Reset:     reset,
	}, nil
}

// Middleware enforces the allowance. Redis failures let the request through.
func (rl *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "user not authenticated",
			})
		}

		usage, err := rl.IsAllowed(c.UserContext(), userID)
		if err != nil {
			log.Printf("[RateLimit] Check failed for user %s: %v", userID, err)
			c.Set("X-RateLimit-Error", "rate limit check failed")
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.FormatInt(usage.Limit, 10))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(usage.Remaining, 10))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(usage.Reset.Unix(), 10))

		if !usage.Allowed {
			retryAfter := int(usage.Reset.Sub(rl.now()).Seconds())
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success":     false,
				"error":       "daily analysis limit reached",
				"limit":       usage.Limit,
				"reset_at":    usage.Reset.UTC().Format(time.RFC3339),
				"retry_after": retryAfter,
			})
		}

		return c.Next()
	}
}
