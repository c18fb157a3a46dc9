package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitcoach/internal/middleware"
	"github.com/mansoorceksport/fitcoach/internal/service"
)

// SessionHandler handles anonymous session endpoints
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// CreateSession handles POST /v1/sessions
func (h *SessionHandler) CreateSession(c *fiber.Ctx) error {
	session, err := h.sessions.Issue()
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, "failed to create session")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    session,
	})
}

// RenewSession handles POST /v1/sessions/renew
func (h *SessionHandler) RenewSession(c *fiber.Ctx) error {
	session, err := h.sessions.Renew(middleware.GetSessionID(c))
	if err != nil {
		return fail(c, fiber.StatusUnauthorized, err.Error())
	}
	return ok(c, session)
}
