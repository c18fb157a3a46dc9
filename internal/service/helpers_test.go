package service

import (
	"context"
	"sync"
	"testing"

	"github.com/mansoorceksport/fitcoach/internal/domain"
	"github.com/mansoorceksport/fitcoach/internal/store"
)

const validPlanJSON = `{
  "workoutPlan": {
    "overview": "Three strength sessions per week",
    "weeklySchedule": [
      {"day": "Monday", "focus": "Lower Body", "exercises": [{"name": "Squat", "sets": 4, "reps": "8-10", "rest": "90 seconds"}], "duration": "50 minutes"}
    ],
    "tips": ["Sleep well"]
  },
  "dietPlan": {
    "dailyCalories": 2400,
    "macros": {"protein": "160g", "carbs": "260g", "fats": "70g"},
    "meals": {
      "breakfast": {"time": "7:00 AM", "items": ["Eggs", "Toast"], "calories": "~500"},
      "dinner": {"time": "7:30 PM", "items": ["Chicken", "Rice"], "calories": "~650"}
    },
    "hydration": "3 litres",
    "tips": ["Prep meals on Sunday"]
  },
  "motivation": {"quote": "Discipline beats motivation", "dailyTips": ["Walk after meals"], "expectedResults": "More strength in 6 weeks"}
}`

func testProfile() domain.UserProfile {
	return domain.UserProfile{
		Name:         "Meera",
		Age:          29,
		Gender:       domain.GenderFemale,
		Height:       170,
		Weight:       70,
		Goal:         domain.GoalWeightLoss,
		FitnessLevel: domain.LevelBeginner,
		Location:     domain.LocationHome,
		Diet:         domain.DietVeg,
	}
}

// fakeModel returns canned completions and records prompts
type fakeModel struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (f *fakeModel) Complete(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func (f *fakeModel) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), domain.StorageNamespace+":test", nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })
	return st
}
