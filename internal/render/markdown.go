package render

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mansoorceksport/fitcoach/internal/domain"
)

// Tab is one section of the plan viewer
type Tab int

const (
	TabWorkout Tab = iota
	TabDiet
	TabMotivation
)

// Tabs in display order
var Tabs = []Tab{TabWorkout, TabDiet, TabMotivation}

func (t Tab) String() string {
	switch t {
	case TabDiet:
		return "Diet"
	case TabMotivation:
		return "Motivation"
	default:
		return "Workout"
	}
}

// Markdown returns the markdown body of a tab. Empty fields are left out.
func Markdown(plan *domain.FitnessPlan, tab Tab) string {
	if plan == nil {
		return ""
	}
	switch tab {
	case TabDiet:
		return dietMarkdown(plan.DietPlan)
	case TabMotivation:
		return motivationMarkdown(plan.Motivation)
	default:
		return workoutMarkdown(plan.WorkoutPlan)
	}
}

func workoutMarkdown(w domain.WorkoutPlan) string {
	var b strings.Builder
	b.WriteString("# Workout Plan\n\n")
	if w.Overview != "" {
		b.WriteString(w.Overview + "\n\n")
	}

	for _, day := range w.WeeklySchedule {
		fmt.Fprintf(&b, "## %s", day.Day)
		if day.Focus != "" {
			fmt.Fprintf(&b, " - %s", day.Focus)
		}
		b.WriteString("\n\n")
		if day.Duration != "" {
			fmt.Fprintf(&b, "_Duration: %s_\n\n", day.Duration)
		}
		for _, ex := range day.Exercises {
			fmt.Fprintf(&b, "- **%s**", ex.Name)
			if detail := exerciseDetail(ex); detail != "" {
				b.WriteString(": " + detail)
			}
			b.WriteString("\n")
			if ex.Description != "" {
				fmt.Fprintf(&b, "  %s\n", ex.Description)
			}
		}
		b.WriteString("\n")
	}

	writeList(&b, "Tips", w.Tips)
	return b.String()
}

func exerciseDetail(ex domain.Exercise) string {
	var parts []string
	if ex.Sets != "" {
		parts = append(parts, fmt.Sprintf("%s sets", ex.Sets))
	}
	if ex.Reps != "" {
		parts = append(parts, fmt.Sprintf("%s reps", ex.Reps))
	}
	if ex.Rest != "" {
		parts = append(parts, fmt.Sprintf("rest %s", ex.Rest))
	}
	return strings.Join(parts, " x ")
}

func dietMarkdown(d domain.DietPlan) string {
	var b strings.Builder
	b.WriteString("# Diet Plan\n\n")
	if d.DailyCalories != "" {
		fmt.Fprintf(&b, "**Daily calories:** %s\n\n", d.DailyCalories)
	}
	if d.Macros != (domain.Macros{}) {
		fmt.Fprintf(&b, "**Macros:** protein %s, carbs %s, fats %s\n\n", d.Macros.Protein, d.Macros.Carbs, d.Macros.Fats)
	}

	for _, meal := range d.Meals {
		fmt.Fprintf(&b, "## %s", capitalize(meal.Title()))
		if meal.Time != "" {
			fmt.Fprintf(&b, " (%s)", meal.Time)
		}
		b.WriteString("\n\n")
		for _, item := range meal.Items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
		if meal.Calories != "" {
			fmt.Fprintf(&b, "\n_%s calories_\n", meal.Calories)
		}
		b.WriteString("\n")
	}

	if d.Hydration != "" {
		fmt.Fprintf(&b, "**Hydration:** %s\n\n", d.Hydration)
	}
	writeList(&b, "Tips", d.Tips)
	return b.String()
}

func motivationMarkdown(m domain.Motivation) string {
	var b strings.Builder
	b.WriteString("# Motivation\n\n")
	if m.Quote != "" {
		fmt.Fprintf(&b, "> %s\n\n", m.Quote)
	}
	writeList(&b, "Daily Tips", m.DailyTips)
	if m.ExpectedResults != "" {
		fmt.Fprintf(&b, "## Expected Results\n\n%s\n", m.ExpectedResults)
	}
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
