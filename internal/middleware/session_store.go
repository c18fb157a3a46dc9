package middleware

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitcoach/internal/store"
)

// StoreKey is the context key of the session's state store
const StoreKey = "stateStore"

// SessionStore opens the state store of the authenticated session and holds
// it for the duration of the request. Must run after VerifySessionToken.
func SessionStore(registry *store.Registry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		namespace := GetNamespace(c)
		if namespace == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "session not authenticated",
			})
		}

		st, release, err := registry.Acquire(c.UserContext(), namespace)
		if err != nil {
			log.Printf("Error loading session state: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"success": false,
				"error":   "Session state is temporarily unavailable. Please try again.",
			})
		}
		defer release()

		c.Locals(StoreKey, st)
		return c.Next()
	}
}

// GetStore extracts the session's state store from the context
func GetStore(c *fiber.Ctx) *store.Store {
	st, _ := c.Locals(StoreKey).(*store.Store)
	return st
}
