package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitcoach/internal/domain"
)

// StateHandler exposes the raw persisted blob of a session
type StateHandler struct{}

// NewStateHandler creates a new state handler
func NewStateHandler() *StateHandler {
	return &StateHandler{}
}

// GetState handles GET /v1/state and returns {"state": {...}}
func (h *StateHandler) GetState(c *fiber.Ctx) error {
	st, found := sessionStore(c)
	if !found {
		return fail(c, fiber.StatusUnauthorized, "session not authenticated")
	}
	return c.JSON(domain.PersistedState{State: st.Snapshot()})
}

// PutState handles PUT /v1/state, replacing the whole session state
func (h *StateHandler) PutState(c *fiber.Ctx) error {
	st, found := sessionStore(c)
	if !found {
		return fail(c, fiber.StatusUnauthorized, "session not authenticated")
	}

	var blob domain.PersistedState
	if err := c.BodyParser(&blob); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid state blob: "+err.Error())
	}
	if err := st.Replace(blob.State); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid state blob: "+err.Error())
	}

	return c.JSON(domain.PersistedState{State: st.Snapshot()})
}
