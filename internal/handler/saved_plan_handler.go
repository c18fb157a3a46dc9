package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitcoach/internal/domain"
)

// SavedPlanHandler handles the saved-plan history of a session
type SavedPlanHandler struct{}

// NewSavedPlanHandler creates a new saved plan handler
func NewSavedPlanHandler() *SavedPlanHandler {
	return &SavedPlanHandler{}
}

// ListSavedPlans handles GET /v1/saved-plans, oldest first
func (h *SavedPlanHandler) ListSavedPlans(c *fiber.Ctx) error {
	st, found := sessionStore(c)
	if !found {
		return fail(c, fiber.StatusUnauthorized, "session not authenticated")
	}

	plans := st.SavedPlans()
	return c.JSON(fiber.Map{
		"success": true,
		"data":    plans,
		"count":   len(plans),
	})
}

// SavePlan handles POST /v1/saved-plans. An empty body saves the current plan,
// otherwise the body is a {userData, fitnessPlan} pair.
func (h *SavedPlanHandler) SavePlan(c *fiber.Ctx) error {
	st, found := sessionStore(c)
	if !found {
		return fail(c, fiber.StatusUnauthorized, "session not authenticated")
	}

	var req planResponse
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "invalid request body")
		}
	}

	var (
		entry domain.SavedPlanEntry
		err   error
	)
	switch {
	case req.UserData == nil && req.FitnessPlan == nil:
		entry, err = st.SaveCurrent()
	case req.UserData == nil:
		err = domain.ErrNoProfile
	default:
		if vErr := req.UserData.Validate(); vErr != nil {
			return fail(c, fiber.StatusBadRequest, vErr.Error())
		}
		if req.FitnessPlan != nil {
			if vErr := req.FitnessPlan.Validate(); vErr != nil {
				return fail(c, fiber.StatusBadRequest, vErr.Error())
			}
		}
		entry, err = st.SavePlan(*req.UserData, req.FitnessPlan)
	}
	if err != nil {
		return failErr(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    entry,
		"message": "Plan saved successfully!",
	})
}

// DeleteSavedPlan handles DELETE /v1/saved-plans/:index
func (h *SavedPlanHandler) DeleteSavedPlan(c *fiber.Ctx) error {
	st, found := sessionStore(c)
	if !found {
		return fail(c, fiber.StatusUnauthorized, "session not authenticated")
	}

	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "index must be an integer")
	}
	if err := st.DeleteSavedPlan(index); err != nil {
		return failErr(c, err)
	}
	return ok(c, st.SavedPlans())
}

// LoadSavedPlan handles POST /v1/saved-plans/:index/load
func (h *SavedPlanHandler) LoadSavedPlan(c *fiber.Ctx) error {
	st, found := sessionStore(c)
	if !found {
		return fail(c, fiber.StatusUnauthorized, "session not authenticated")
	}

	index, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return fail(c, fiber.StatusBadRequest, "index must be an integer")
	}
	entry, err := st.LoadSavedPlan(index)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, planResponse{UserData: &entry.UserData, FitnessPlan: entry.FitnessPlan})
}
