package service

import (
	"context"

	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/store"
	"golang.org/x/sync/errgroup"
)

// StatCards are the headline numbers shown above a plan
type StatCards struct {
	BMI         float64 `json:"bmi"`
	BMICategory string  `json:"bmi_category"`
	Goal        string  `json:"goal"`
	Level       string  `json:"level"`
}

// PlanSummary is everything the plan view needs in one response
type PlanSummary struct {
	UserData    *domain.UserProfile `json:"userData"`
	FitnessPlan *domain.FitnessPlan `json:"fitnessPlan"`
	Stats       *StatCards          `json:"stats,omitempty"`
	Quote       string              `json:"quote"`
	DarkMode    bool                `json:"darkMode"`
}

// SummaryService assembles the plan view
type SummaryService struct {
	quotes *QuoteService
}

// NewSummaryService creates a new summary service
func NewSummaryService(quotes *QuoteService) *SummaryService {
	return &SummaryService{quotes: quotes}
}

// NewStatCards computes the stat cards for a profile. BMI is rounded to two decimals.
func NewStatCards(profile domain.UserProfile) *StatCards {
	bmi := profile.BMI()
	return &StatCards{
		BMI:         domain.RoundTo(bmi, 2),
		BMICategory: domain.BMICategory(bmi),
		Goal:        profile.GoalLabel(),
		Level:       string(profile.FitnessLevel),
	}
}

// Summary loads the session snapshot and the quote concurrently
func (s *SummaryService) Summary(ctx context.Context, st *store.Store) (*PlanSummary, error) {
	summary := &PlanSummary{}

	// Use errgroup for concurrent fetching
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		snapshot := st.Snapshot()
		summary.UserData = snapshot.UserData
		summary.FitnessPlan = snapshot.FitnessPlan
		summary.DarkMode = snapshot.DarkMode
		if snapshot.UserData != nil {
			summary.Stats = NewStatCards(*snapshot.UserData)
		}
		return nil
	})

	g.Go(func() error {
		if s.quotes == nil {
			summary.Quote = FallbackQuote
			return nil
		}
		summary.Quote = s.quotes.Quote(gCtx, false)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summary, nil
}
