package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

const samplePlanJSON = `{
  "workoutPlan": {
    "overview": "Three full-body sessions a week",
    "weeklySchedule": [
      {
        "day": "Monday",
        "focus": "Upper Body Strength",
        "exercises": [
          {"name": "Push Up", "sets": 3, "reps": "8-12", "rest": "60 seconds", "description": "Keep a straight line"}
        ],
        "duration": "45 minutes"
      }
    ],
    "tips": ["Warm up first"]
  },
  "dietPlan": {
    "dailyCalories": "2000-2200",
    "macros": {"protein": "150g", "carbs": "200g", "fats": "60g"},
    "meals": {
      "lunch": {"time": "12:30 PM", "items": ["Rice", "Dal"], "calories": "~600"},
      "breakfast": {"time": "7:00 AM", "items": ["Oats"], "calories": 450},
      "midMorningSnack": {"time": "10:00 AM", "items": ["Apple"], "calories": "~100"}
    },
    "hydration": "3 litres",
    "tips": ["Eat slowly"]
  },
  "motivation": {
    "quote": "Start where you are.",
    "dailyTips": ["Sleep 8 hours"],
    "expectedResults": "Better energy in 4 weeks"
  },
  "extra": "ignored"
}`

func TestDecodePlan(t *testing.T) {
	plan, err := DecodePlan([]byte(samplePlanJSON))
	if err != nil {
		t.Fatalf("DecodePlan() error = %v", err)
	}

	ex := plan.WorkoutPlan.WeeklySchedule[0].Exercises[0]
	if ex.Sets != "3" {
		t.Errorf("numeric sets decoded as %q, want \"3\"", ex.Sets)
	}

	names := []string{}
	for _, meal := range plan.DietPlan.Meals {
		names = append(names, meal.Name)
	}
	want := []string{"lunch", "breakfast", "midMorningSnack"}
	if len(names) != len(want) {
		t.Fatalf("meals = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("meal order = %v, want %v", names, want)
			break
		}
	}

	breakfast, ok := plan.DietPlan.Meals.Get("breakfast")
	if !ok || breakfast.Calories != "450" {
		t.Errorf("breakfast = %+v, %v", breakfast, ok)
	}
}

func TestMealsMarshalPreservesOrder(t *testing.T) {
	plan, err := DecodePlan([]byte(samplePlanJSON))
	if err != nil {
		t.Fatalf("DecodePlan() error = %v", err)
	}

	data, err := json.Marshal(plan.DietPlan.Meals)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var again Meals
	if err := json.Unmarshal(data, &again); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(again) != 3 || again[0].Name != "lunch" || again[2].Name != "midMorningSnack" {
		t.Errorf("order lost after marshal: %s", data)
	}
}

func TestDecodePlanRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `Sure! Here is your plan`},
		{name: "array", body: `[]`},
		{name: "missing diet", body: `{"workoutPlan": {}, "motivation": {}}`},
		{name: "null motivation", body: `{"workoutPlan": {}, "dietPlan": {}, "motivation": null}`},
		{name: "section is string", body: `{"workoutPlan": "run", "dietPlan": {}, "motivation": {}}`},
		{name: "schedule not array", body: `{"workoutPlan": {"weeklySchedule": "daily"}, "dietPlan": {}, "motivation": {}}`},
		{name: "meals not object", body: `{"workoutPlan": {}, "dietPlan": {"meals": []}, "motivation": {}}`},
		{name: "day without name", body: `{"workoutPlan": {"weeklySchedule": [{"focus": "legs"}]}, "dietPlan": {}, "motivation": {}}`},
		{name: "exercise without name", body: `{"workoutPlan": {"weeklySchedule": [{"day": "Mon", "exercises": [{"sets": "3"}]}]}, "dietPlan": {}, "motivation": {}}`},
		{name: "object where text expected", body: `{"workoutPlan": {}, "dietPlan": {"dailyCalories": {"min": 1}}, "motivation": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := DecodePlan([]byte(tt.body))
			if !errors.Is(err, ErrParse) {
				t.Errorf("DecodePlan() error = %v, want ErrParse", err)
			}
			if plan != nil {
				t.Errorf("DecodePlan() returned a partial plan: %+v", plan)
			}
		})
	}
}

func TestDecodePlanAllowsEmptySections(t *testing.T) {
	plan, err := DecodePlan([]byte(`{"workoutPlan": {}, "dietPlan": {}, "motivation": {}}`))
	if err != nil {
		t.Fatalf("DecodePlan() error = %v", err)
	}
	if len(plan.WorkoutPlan.WeeklySchedule) != 0 || plan.DietPlan.Meals != nil {
		t.Errorf("unexpected content in empty plan: %+v", plan)
	}
}

func TestMealTitle(t *testing.T) {
	tests := map[string]string{
		"breakfast":       "breakfast",
		"midMorningSnack": "mid Morning Snack",
		"eveningSnack":    "evening Snack",
		"PostWorkout":     "Post Workout",
	}
	for in, want := range tests {
		if got := MealTitle(in); got != want {
			t.Errorf("MealTitle(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPlanCloneIsDeep(t *testing.T) {
	plan, err := DecodePlan([]byte(samplePlanJSON))
	if err != nil {
		t.Fatalf("DecodePlan() error = %v", err)
	}

	clone := plan.Clone()
	clone.WorkoutPlan.WeeklySchedule[0].Exercises[0].Name = "Changed"
	clone.DietPlan.Meals[0].Items[0] = "Changed"
	clone.Motivation.DailyTips[0] = "Changed"

	if plan.WorkoutPlan.WeeklySchedule[0].Exercises[0].Name != "Push Up" {
		t.Error("exercise shared between clone and original")
	}
	if plan.DietPlan.Meals[0].Items[0] != "Rice" {
		t.Error("meal items shared between clone and original")
	}
	if plan.Motivation.DailyTips[0] != "Sleep 8 hours" {
		t.Error("daily tips shared between clone and original")
	}
}
