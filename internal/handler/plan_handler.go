package handler

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/export"
	"github.com/mansoorceksport/fitcoach/internal/service"
	"github.com/mansoorceksport/fitcoach/internal/speech"
	"github.com/mansoorceksport/fitcoach/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

const (
	generateFailedMessage   = "Failed to generate fitness plan. Please try again."
	regenerateFailedMessage = "Failed to regenerate plan"
)

// PlanHandler handles plan generation and the plan views
type PlanHandler struct {
	plans   *service.PlanService
	summary *service.SummaryService
	exports *service.ExportService
}

// NewPlanHandler creates a new plan handler
func NewPlanHandler(plans *service.PlanService, summary *service.SummaryService, exports *service.ExportService) *PlanHandler {
	return &PlanHandler{
		plans:   plans,
		summary: summary,
		exports: exports,
	}
}

type planResponse struct {
	UserData    *domain.UserProfile `json:"userData"`
	FitnessPlan *domain.FitnessPlan `json:"fitnessPlan"`
}

// GeneratePlan handles POST /v1/plan/generate
func (h *PlanHandler) GeneratePlan(c *fiber.Ctx) error {
	st, found := sessionStore(c)
	if !found {
		return fail(c, fiber.StatusUnauthorized, "session not authenticated")
	}

	var profile domain.UserProfile
	if err := c.BodyParser(&profile); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}

	plan, err := h.plans.Generate(c.UserContext(), st, profile)
	if err != nil {
		return h.generationFailed(c, err, generateFailedMessage)
	}

	telemetry.AddSpanEvent(c, "plan.generated", attribute.String("goal", string(profile.Goal)))
	return ok(c, planResponse{UserData: st.UserData(), FitnessPlan: plan})
}

// RegeneratePlan handles POST /v1/plan/regenerate
func (h *PlanHandler) RegeneratePlan(c *fiber.Ctx) error {
	st, found := sessionStore(c)
	if !found {
		return fail(c, fiber.StatusUnauthorized, "session not authenticated")
	}

	plan, err := h.plans.Regenerate(c.UserContext(), st)
	if err != nil {
		return h.generationFailed(c, err, regenerateFailedMessage)
	}

	telemetry.AddSpanEvent(c, "plan.regenerated")
	return ok(c, planResponse{UserData: st.UserData(), FitnessPlan: plan})
}

// generationFailed collapses any generation error into one user-facing message.
// Profile validation errors are shown as-is.
func (h *PlanHandler) generationFailed(c *fiber.Ctx, err error, message string) error {
	if errors.Is(err, domain.ErrInvalidProfile) || errors.Is(err, domain.ErrNoProfile) {
		return failErr(c, err)
	}
	log.Printf("Error generating plan: %v", err)
	return fail(c, errorStatus(err), message)
}

// GetPlan handles GET /v1/plan
func (h *PlanHandler) GetPlan(c *fiber.Ctx) error {
	st, found := sessionStore(c)
	if !found {
		return fail(c, fiber.StatusUnauthorized, "session not authenticated")
	}

	plan := st.FitnessPlan()
	if plan == nil {
		return failErr(c, domain.ErrNoActivePlan)
	}
	return ok(c, planResponse{UserData: st.UserData(), FitnessPlan: plan})
}

// ClearPlan handles DELETE /v1/plan. Saved plans are kept.
func (h *PlanHandler) ClearPlan(c *fiber.Ctx) error {
	st, found := sessionStore(c)
	if !found {
		return fail(c, fiber.StatusUnauthorized, "session not authenticated")
	}

	st.ClearPlan()
	return ok(c, fiber.Map{"message": "Ready for a new plan!"})
}

// GetSummary handles GET /v1/plan/summary
func (h *PlanHandler) GetSummary(c *fiber.Ctx) error {
	st, found := sessionStore(c)
	if !found {
		return fail(c, fiber.StatusUnauthorized, "session not authenticated")
	}

	summary, err := h.summary.Summary(c.UserContext(), st)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, summary)
}

// GetNarration handles GET /v1/plan/narration?section=workout|diet
func (h *PlanHandler) GetNarration(c *fiber.Ctx) error {
	st, found := sessionStore(c)
	if !found {
		return fail(c, fiber.StatusUnauthorized, "session not authenticated")
	}

	section, err := speech.ParseSection(c.Query("section", string(speech.SectionWorkout)))
	if err != nil {
		return failErr(c, err)
	}

	text, err := speech.Narrate(st.FitnessPlan(), section)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, fiber.Map{
		"section": section,
		"text":    text,
	})
}

// DownloadPDF handles GET /v1/plan/export
func (h *PlanHandler) DownloadPDF(c *fiber.Ctx) error {
	st, found := sessionStore(c)
	if !found {
		return fail(c, fiber.StatusUnauthorized, "session not authenticated")
	}

	doc, err := h.exports.Render(st)
	if err != nil {
		log.Printf("Error exporting plan: %v", err)
		if errors.Is(err, domain.ErrNoActivePlan) {
			return failErr(c, err)
		}
		return fail(c, fiber.StatusInternalServerError, "Failed to export plan")
	}

	c.Set(fiber.HeaderContentType, export.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.Filename))
	return c.Send(doc.Data)
}

// ArchivePDF handles POST /v1/plan/export
func (h *PlanHandler) ArchivePDF(c *fiber.Ctx) error {
	st, found := sessionStore(c)
	if !found {
		return fail(c, fiber.StatusUnauthorized, "session not authenticated")
	}

	url, doc, err := h.exports.Archive(c.UserContext(), st)
	if err != nil {
		log.Printf("Error archiving plan: %v", err)
		switch {
		case errors.Is(err, domain.ErrNoActivePlan), errors.Is(err, domain.ErrConfiguration):
			return failErr(c, err)
		default:
			return fail(c, fiber.StatusBadGateway, "Failed to export plan")
		}
	}

	return ok(c, fiber.Map{
		"url":      url,
		"filename": doc.Filename,
	})
}
