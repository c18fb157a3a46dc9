package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/telemetry"
)

// Context keys for storing session info
const (
	SessionIDKey = "sessionID"
	NamespaceKey = telemetry.NamespaceLocal
)

// VerifySessionToken validates the session JWT and stores the session id and
// its state namespace in the request context
func VerifySessionToken(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Missing authorization token",
			})
		}

		// Extract token (format: "Bearer <token>")
		tokenString := authHeader
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenString = authHeader[7:]
		}

		token, err := jwt.ParseWithClaims(tokenString, &domain.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid or expired token",
			})
		}

		claims, ok := token.Claims.(*domain.SessionClaims)
		if !ok || !token.Valid || claims.SessionID == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid token claims",
			})
		}

		c.Locals(SessionIDKey, claims.SessionID)
		c.Locals(NamespaceKey, claims.Namespace())

		return c.Next()
	}
}

// GetSessionID extracts the session id from the context
func GetSessionID(c *fiber.Ctx) string {
	id, ok := c.Locals(SessionIDKey).(string)
	if !ok {
		return ""
	}
	return id
}

// GetNamespace extracts the state namespace from the context
func GetNamespace(c *fiber.Ctx) string {
	ns, ok := c.Locals(NamespaceKey).(string)
	if !ok {
		return ""
	}
	return ns
}
