package middleware

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// IdempotencyMiddleware replays the first successful response for a repeated
// X-Correlation-ID on POST/PUT/PATCH. Keys are scoped per user so two
// clients can't collide on the same correlation ID.
func IdempotencyMiddleware(redisClient *redis.Client, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost && c.Method() != fiber.MethodPatch && c.Method() != fiber.MethodPut {
			return c.Next()
		}

		correlationID := c.Get("X-Correlation-ID")
		if correlationID == "" {
			return c.Next()
		}

		scope := GetUserID(c)
		if scope == "" {
			scope = "anonymous"
		}
		key := fmt.Sprintf("idempotency:%s:%s", scope, correlationID)
		ctx := c.UserContext()

		cached, err := redisClient.Get(ctx, key).Bytes()
		if err == nil && len(cached) > 0 {
			c.Set("X-Idempotent-Replay", "true")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Send(cached)
		}

		if err := c.Next(); err != nil {
			return err
		}

		statusCode := c.Response().StatusCode()
		if statusCode >= 200 && statusCode < 300 {
			body := c.Response().Body()
			if len(body) > 0 {
				// the response buffer is reused by fasthttp once the handler returns
				stored := make([]byte, len(body))
				copy(stored, body)
				go func() {
					bgCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					if err := redisClient.Set(bgCtx, key, stored, ttl).Err(); err != nil {
						log.Printf("[Idempotency] Failed to cache response for %s: %v", key, err)
					}
				}()
			}
		}

		return nil
	}
}
