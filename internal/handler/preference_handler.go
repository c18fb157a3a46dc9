package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitcoach/internal/service"
)

// PreferenceHandler handles the theme and the daily quote
type PreferenceHandler struct {
	quotes *service.QuoteService
}

// NewPreferenceHandler creates a new preference handler
func NewPreferenceHandler(quotes *service.QuoteService) *PreferenceHandler {
	return &PreferenceHandler{
		quotes: quotes,
	}
}

// ToggleTheme handles POST /v1/theme/toggle
func (h *PreferenceHandler) ToggleTheme(c *fiber.Ctx) error {
	st, found := sessionStore(c)
	if !found {
		return fail(c, fiber.StatusUnauthorized, "session not authenticated")
	}
	return ok(c, fiber.Map{"darkMode": st.ToggleDarkMode()})
}

type setThemeRequest struct {
	DarkMode *bool `json:"darkMode"`
}

// SetTheme handles PUT /v1/theme
func (h *PreferenceHandler) SetTheme(c *fiber.Ctx) error {
	st, found := sessionStore(c)
	if !found {
		return fail(c, fiber.StatusUnauthorized, "session not authenticated")
	}

	var req setThemeRequest
	if err := c.BodyParser(&req); err != nil || req.DarkMode == nil {
		return fail(c, fiber.StatusBadRequest, "darkMode is required")
	}
	st.SetDarkMode(*req.DarkMode)
	return ok(c, fiber.Map{"darkMode": st.DarkMode()})
}

// GetQuote handles GET /v1/quote?refresh=true
func (h *PreferenceHandler) GetQuote(c *fiber.Ctx) error {
	return ok(c, fiber.Map{"quote": h.quotes.Quote(c.UserContext(), c.QueryBool("refresh"))})
}
