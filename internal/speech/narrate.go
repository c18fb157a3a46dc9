package speech

import (
	"fmt"
	"strings"

	"github.com/mansoorceksport/fitcoach/internal/domain"
)

// Section selects which part of a plan is narrated
type Section string

const (
	SectionWorkout Section = "workout"
	SectionDiet    Section = "diet"
)

const (
	narratedDays      = 3
	narratedExercises = 3
	narratedItems     = 2
)

// ParseSection validates a section name
func ParseSection(s string) (Section, error) {
	switch Section(strings.ToLower(strings.TrimSpace(s))) {
	case SectionWorkout:
		return SectionWorkout, nil
	case SectionDiet:
		return SectionDiet, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownSection, s)
}

// Narrate renders a plan section as plain text suitable for speech synthesis
func Narrate(plan *domain.FitnessPlan, section Section) (string, error) {
	if plan == nil {
		return "", domain.ErrNoActivePlan
	}

	var b strings.Builder
	switch section {
	case SectionWorkout:
		w := plan.WorkoutPlan
		fmt.Fprintf(&b, "Here is your workout plan. %s. ", w.Overview)
		for i, day := range w.WeeklySchedule {
			if i == narratedDays {
				break
			}
			fmt.Fprintf(&b, "%s, %s. ", day.Day, day.Focus)
			for j, ex := range day.Exercises {
				if j == narratedExercises {
					break
				}
				fmt.Fprintf(&b, "%s, %s sets of %s reps. ", ex.Name, ex.Sets, ex.Reps)
			}
		}
	case SectionDiet:
		d := plan.DietPlan
		fmt.Fprintf(&b, "Here is your diet plan. Daily calories: %s. ", d.DailyCalories)
		for _, meal := range d.Meals {
			fmt.Fprintf(&b, "%s, at %s. ", meal.Title(), meal.Time)
			for j, item := range meal.Items {
				if j == narratedItems {
					break
				}
				fmt.Fprintf(&b, "%s. ", item)
			}
		}
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownSection, section)
	}
	return b.String(), nil
}
