package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// IdempotencyMiddleware replays responses for POST/PATCH/PUT requests that repeat an
// X-Correlation-ID within the TTL. Keys are scoped to the session when one is present.
func IdempotencyMiddleware(redisClient *redis.Client, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if redisClient == nil {
			return c.Next()
		}

		// Only apply to mutating methods
		if c.Method() != fiber.MethodPost && c.Method() != fiber.MethodPatch && c.Method() != fiber.MethodPut {
			return c.Next()
		}

		correlationID := c.Get("X-Correlation-ID")
		if correlationID == "" {
			return c.Next()
		}

		key := fmt.Sprintf("idempotency:%s:%s", GetSessionID(c), correlationID)
		ctx := context.Background()

		cached, err := redisClient.HGetAll(ctx, key).Result()
		if err == nil && len(cached["body"]) > 0 {
			contentType := cached["content_type"]
			if contentType == "" {
				contentType = fiber.MIMEApplicationJSON
			}
			c.Set("X-Idempotent-Replay", "true")
			c.Set(fiber.HeaderContentType, contentType)
			return c.Send([]byte(cached["body"]))
		}

		if err := c.Next(); err != nil {
			return err
		}

		// Cache successful responses (2xx status codes)
		statusCode := c.Response().StatusCode()
		if statusCode >= 200 && statusCode < 300 {
			body := append([]byte(nil), c.Response().Body()...)
			contentType := string(c.Response().Header.ContentType())
			if len(body) > 0 {
				// Cache with TTL (fire and forget)
				go func() {
					bgCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
					defer cancel()
					pipe := redisClient.TxPipeline()
					pipe.HSet(bgCtx, key, "body", body, "content_type", contentType)
					pipe.Expire(bgCtx, key, ttl)
					_, _ = pipe.Exec(bgCtx)
				}()
			}
		}

		return nil
	}
}
