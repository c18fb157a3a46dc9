package export

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mansoorceksport/fitcoach/internal/domain"
)

// Layout constants in millimetres
const (
	Margin    = 20.0
	TopCursor = 20.0

	workoutBreakAt    = 200.0
	dayBreakAt        = 250.0
	exerciseBreakAt   = 270.0
	dietBreakAt       = 200.0
	mealBreakAt       = 270.0
	mealItemBreakAt   = 280.0
	motivationBreakAt = 230.0

	maxDays          = 3
	maxExercises     = 4
	maxItemsPerMeal  = 4
	footerFromBottom = 10.0
)

// ContentType of exported documents
const ContentType = "application/pdf"

// Filename returns "<name>_Fitness_Plan.pdf" with path separators removed
func Filename(name string) string {
	name = strings.NewReplacer("/", "", "\\", "").Replace(strings.TrimSpace(name))
	return name + "_Fitness_Plan.pdf"
}

// WritePDF renders the plan as a PDF document into w
func WritePDF(w io.Writer, profile domain.UserProfile, plan *domain.FitnessPlan) error {
	canvas := NewPDFCanvas()
	if err := Render(canvas, profile, plan); err != nil {
		return err
	}
	if err := canvas.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}

// PDF renders the plan and returns the document bytes
func PDF(profile domain.UserProfile, plan *domain.FitnessPlan) ([]byte, error) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, profile, plan); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Render lays the plan out onto c. The canvas must already have its first page.
func Render(c Canvas, profile domain.UserProfile, plan *domain.FitnessPlan) error {
	if plan == nil {
		return domain.ErrNoActivePlan
	}

	l := &layout{canvas: c, y: TopCursor}
	l.pageWidth, l.pageHeight = c.PageSize()
	l.maxWidth = l.pageWidth - Margin*2

	l.header(profile)
	l.workout(plan.WorkoutPlan)
	l.diet(plan.DietPlan)
	l.motivation(plan.Motivation)
	l.footer()
	return nil
}

type layout struct {
	canvas     Canvas
	y          float64
	pageWidth  float64
	pageHeight float64
	maxWidth   float64
}

// breakIfBelow starts a new page when the cursor is past limit
func (l *layout) breakIfBelow(limit float64) {
	if l.y > limit {
		l.canvas.AddPage()
		l.y = TopCursor
	}
}

func (l *layout) header(p domain.UserProfile) {
	c := l.canvas

	c.SetFont(Bold, 22)
	c.CenteredText(l.y, "AI FITNESS COACH")
	l.y += 10

	c.SetFont(Bold, 18)
	c.CenteredText(l.y, "Your Personalized Fitness Plan")
	l.y += 15

	c.SetFont(Regular, 12)
	c.Text(Margin, l.y, "Name: "+p.Name)
	l.y += 7
	c.Text(Margin, l.y, fmt.Sprintf("Age: %d | Gender: %s | Goal: %s", p.Age, p.Gender, p.Goal))
	l.y += 7
	c.Text(Margin, l.y, fmt.Sprintf("Height: %gcm | Weight: %gkg", p.Height, p.Weight))
	l.y += 15
}

func (l *layout) workout(w domain.WorkoutPlan) {
	c := l.canvas

	l.breakIfBelow(workoutBreakAt)

	c.SetDrawColor(200, 200, 200)
	c.Line(Margin, l.y, l.pageWidth-Margin, l.y)
	l.y += 10

	c.SetFont(Bold, 16)
	c.Text(Margin, l.y, "WORKOUT PLAN")
	l.y += 10

	c.SetFont(Regular, 10)
	overview := c.SplitText(w.Overview, l.maxWidth)
	l.lines(overview, 5)
	l.y += float64(len(overview))*5 + 8

	for _, day := range firstDays(w.WeeklySchedule, maxDays) {
		l.breakIfBelow(dayBreakAt)

		c.SetFont(Bold, 12)
		c.Text(Margin, l.y, fmt.Sprintf("%s - %s", day.Day, day.Focus))
		l.y += 6

		c.SetFont(Italic, 9)
		c.Text(Margin+5, l.y, "Duration: "+day.Duration.String())
		l.y += 5

		c.SetFont(Regular, 10)
		for _, ex := range firstExercises(day.Exercises, maxExercises) {
			l.breakIfBelow(exerciseBreakAt)
			c.Text(Margin+5, l.y, fmt.Sprintf("- %s: %s sets x %s reps (Rest: %s)", ex.Name, ex.Sets, ex.Reps, ex.Rest))
			l.y += 5
		}
		l.y += 5
	}
}

func (l *layout) diet(d domain.DietPlan) {
	c := l.canvas

	l.breakIfBelow(dietBreakAt)

	c.SetFont(Bold, 16)
	c.Text(Margin, l.y, "DIET PLAN")
	l.y += 10

	c.SetFont(Bold, 11)
	c.Text(Margin, l.y, fmt.Sprintf("Daily Target: %s calories", d.DailyCalories))
	l.y += 7

	c.SetFont(Regular, 10)
	c.Text(Margin, l.y, fmt.Sprintf("Macros - Protein: %s | Carbs: %s | Fats: %s", d.Macros.Protein, d.Macros.Carbs, d.Macros.Fats))
	l.y += 10

	for _, meal := range d.Meals {
		l.breakIfBelow(mealBreakAt)

		c.SetFont(Bold, 10)
		c.Text(Margin, l.y, fmt.Sprintf("%s - %s", capitalize(meal.Title()), meal.Time))
		l.y += 5

		c.SetFont(Italic, 9)
		c.Text(Margin+5, l.y, "Calories: "+meal.Calories.String())
		l.y += 5

		c.SetFont(Regular, 10)
		items := meal.Items
		if len(items) > maxItemsPerMeal {
			items = items[:maxItemsPerMeal]
		}
		for _, item := range items {
			l.breakIfBelow(mealItemBreakAt)
			c.Text(Margin+5, l.y, "- "+item)
			l.y += 5
		}
		l.y += 3
	}
}

func (l *layout) motivation(m domain.Motivation) {
	c := l.canvas

	l.breakIfBelow(motivationBreakAt)

	c.SetFont(Bold, 16)
	c.Text(Margin, l.y, "MOTIVATION & TIPS")
	l.y += 10

	c.SetFont(Bold, 12)
	c.Text(Margin, l.y, "Your Daily Motivation:")
	l.y += 7

	c.SetFont(Italic, 11)
	quote := c.SplitText(`"`+m.Quote+`"`, l.maxWidth)
	l.lines(quote, 6)
	l.y += float64(len(quote))*6 + 8

	c.SetFont(Bold, 11)
	c.Text(Margin, l.y, "Expected Results:")
	l.y += 7

	c.SetFont(Regular, 10)
	l.lines(c.SplitText(m.ExpectedResults, l.maxWidth), 5)
}

// lines writes wrapped text starting at the cursor without moving it
func (l *layout) lines(lines []string, leading float64) {
	for i, line := range lines {
		l.canvas.Text(Margin, l.y+float64(i)*leading, line)
	}
}

func (l *layout) footer() {
	c := l.canvas
	pages := c.PageCount()
	for i := 1; i <= pages; i++ {
		c.SetPage(i)
		c.SetFont(Regular, 8)
		c.CenteredText(l.pageHeight-footerFromBottom, fmt.Sprintf("Generated by AI Fitness Coach | Page %d of %d", i, pages))
	}
}

func firstDays(days []domain.WorkoutDay, n int) []domain.WorkoutDay {
	if len(days) > n {
		return days[:n]
	}
	return days
}

func firstExercises(exercises []domain.Exercise, n int) []domain.Exercise {
	if len(exercises) > n {
		return exercises[:n]
	}
	return exercises
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}
