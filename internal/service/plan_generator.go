package service

import (
	"context"
	"errors"
	"strings"

	"github.com/mansoorceksport/fitcoach/internal/domain"
)

// LLMPlanGenerator implements domain.PlanGenerator with a single text model call
type LLMPlanGenerator struct {
	model domain.TextModel
}

// NewLLMPlanGenerator creates a new plan generator
func NewLLMPlanGenerator(model domain.TextModel) *LLMPlanGenerator {
	return &LLMPlanGenerator{model: model}
}

// Generate builds the prompt, calls the model exactly once, strips code fences
// and strictly decodes the plan. Every failure is a *domain.GenerationError.
func (g *LLMPlanGenerator) Generate(ctx context.Context, profile domain.UserProfile) (*domain.FitnessPlan, error) {
	if g.model == nil {
		return nil, domain.NewGenerationError(domain.ErrConfiguration, 0, "no text model configured")
	}

	prompt, err := BuildPlanPrompt(profile)
	if err != nil {
		return nil, domain.NewGenerationError(domain.ErrConfiguration, 0, "%w", err)
	}

	text, err := g.model.Complete(ctx, prompt)
	if err != nil {
		var genErr *domain.GenerationError
		if errors.As(err, &genErr) {
			return nil, genErr
		}
		return nil, domain.NewGenerationError(domain.ErrNetwork, 0, "%w", err)
	}

	cleaned := StripFences(text)
	if strings.TrimSpace(cleaned) == "" {
		return nil, domain.NewGenerationError(domain.ErrParse, 0, "empty response from AI model")
	}

	plan, err := domain.DecodePlan([]byte(cleaned))
	if err != nil {
		return nil, domain.NewGenerationError(domain.ErrParse, 0, "%w", err)
	}
	return plan, nil
}
