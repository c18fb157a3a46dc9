package service

import (
	"context"
	"errors"
	"log"

	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// PlanService runs plan requests against a session's state store
type PlanService struct {
	generator domain.PlanGenerator
	requests  metric.Int64Counter
	failures  metric.Int64Counter
}

// NewPlanService creates a new plan service
func NewPlanService(generator domain.PlanGenerator) *PlanService {
	meter := otel.Meter("fitcoach")
	requests, _ := meter.Int64Counter("plan.requests",
		metric.WithDescription("Plan generation requests"))
	failures, _ := meter.Int64Counter("plan.failures",
		metric.WithDescription("Failed plan generation requests by error kind"))

	return &PlanService{
		generator: generator,
		requests:  requests,
		failures:  failures,
	}
}

// Generate stores the submitted profile, requests a plan for it and commits
// the result. On failure the previously stored plan is left untouched.
func (s *PlanService) Generate(ctx context.Context, st *store.Store, profile domain.UserProfile) (*domain.FitnessPlan, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	st.SetUserData(&profile)
	return s.request(ctx, st, profile)
}

// Regenerate requests a new plan for the stored profile
func (s *PlanService) Regenerate(ctx context.Context, st *store.Store) (*domain.FitnessPlan, error) {
	profile := st.UserData()
	if profile == nil {
		return nil, domain.ErrNoProfile
	}
	return s.request(ctx, st, *profile)
}

func (s *PlanService) request(ctx context.Context, st *store.Store, profile domain.UserProfile) (*domain.FitnessPlan, error) {
	token := st.BeginRequest()
	s.requests.Add(ctx, 1)

	plan, err := s.generator.Generate(ctx, profile)
	if err != nil {
		s.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", errorKind(err))))
		log.Printf("Plan generation failed for %s: %v", st.Namespace(), err)
		return nil, err
	}

	if err := st.CommitPlan(token, plan); err != nil {
		// A newer request owns the state now; this result is dropped
		return nil, err
	}
	return plan, nil
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrConfiguration):
		return "configuration"
	case errors.Is(err, domain.ErrNetwork):
		return "network"
	case errors.Is(err, domain.ErrParse):
		return "parse"
	default:
		return "other"
	}
}
