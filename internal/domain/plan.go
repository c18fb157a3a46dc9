package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// FitnessPlan is the structured plan produced by the text model
type FitnessPlan struct {
	WorkoutPlan WorkoutPlan `json:"workoutPlan" bson:"workout_plan"`
	DietPlan    DietPlan    `json:"dietPlan" bson:"diet_plan"`
	Motivation  Motivation  `json:"motivation" bson:"motivation"`
}

// WorkoutPlan holds the weekly training schedule
type WorkoutPlan struct {
	Overview       string       `json:"overview,omitempty" bson:"overview,omitempty"`
	WeeklySchedule []WorkoutDay `json:"weeklySchedule,omitempty" bson:"weekly_schedule,omitempty"`
	Tips           []string     `json:"tips,omitempty" bson:"tips,omitempty"`
}

// WorkoutDay is a single scheduled training day
type WorkoutDay struct {
	Day       string     `json:"day" bson:"day"`
	Focus     string     `json:"focus,omitempty" bson:"focus,omitempty"`
	Exercises []Exercise `json:"exercises,omitempty" bson:"exercises,omitempty"`
	Duration  FlexString `json:"duration,omitempty" bson:"duration,omitempty"`
}

// Exercise is one movement within a workout day
type Exercise struct {
	Name        string     `json:"name" bson:"name"`
	Sets        FlexString `json:"sets,omitempty" bson:"sets,omitempty"`
	Reps        FlexString `json:"reps,omitempty" bson:"reps,omitempty"`
	Rest        FlexString `json:"rest,omitempty" bson:"rest,omitempty"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
}

// DietPlan holds calorie targets, macros and meals
type DietPlan struct {
	DailyCalories FlexString `json:"dailyCalories,omitempty" bson:"daily_calories,omitempty"`
	Macros        Macros     `json:"macros" bson:"macros"`
	Meals         Meals      `json:"meals,omitempty" bson:"meals,omitempty"`
	Hydration     string     `json:"hydration,omitempty" bson:"hydration,omitempty"`
	Tips          []string   `json:"tips,omitempty" bson:"tips,omitempty"`
}

// Macros are the daily macro-nutrient targets
type Macros struct {
	Protein FlexString `json:"protein,omitempty" bson:"protein,omitempty"`
	Carbs   FlexString `json:"carbs,omitempty" bson:"carbs,omitempty"`
	Fats    FlexString `json:"fats,omitempty" bson:"fats,omitempty"`
}

// Meal is one entry of the ordered meal mapping. Name is the mapping key.
type Meal struct {
	Name     string     `json:"-" bson:"name"`
	Time     FlexString `json:"time,omitempty" bson:"time,omitempty"`
	Items    []string   `json:"items,omitempty" bson:"items,omitempty"`
	Calories FlexString `json:"calories,omitempty" bson:"calories,omitempty"`
}

// Motivation holds the quote and lifestyle tips
type Motivation struct {
	Quote           string   `json:"quote,omitempty" bson:"quote,omitempty"`
	DailyTips       []string `json:"dailyTips,omitempty" bson:"daily_tips,omitempty"`
	ExpectedResults string   `json:"expectedResults,omitempty" bson:"expected_results,omitempty"`
}

// Title splits a camelCase meal key into words: "midMorningSnack" -> "mid Morning Snack"
func (m Meal) Title() string {
	return MealTitle(m.Name)
}

// Description joins the meal items, used as an image label
func (m Meal) Description() string {
	return strings.Join(m.Items, ", ")
}

// MealTitle inserts a space before every upper-case letter and trims the result
func MealTitle(key string) string {
	var b strings.Builder
	for _, r := range key {
		if unicode.IsUpper(r) {
			b.WriteRune(' ')
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// FlexString is a text field that also accepts JSON numbers and booleans.
// Models regularly answer `"sets": 3` where the example asked for "3-4".
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}

	switch data[0] {
	case '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
	case '{', '[':
		return fmt.Errorf("expected text, got %s", string(data[:1]))
	default:
		*s = FlexString(data)
	}
	return nil
}

func (s FlexString) String() string {
	return string(s)
}

// Meals is an ordered mapping of meal name to meal. JSON object key order is
// preserved in both directions.
type Meals []Meal

func (m *Meals) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("meals must be a JSON object")
	}

	meals := Meals{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected meal key %v", keyTok)
		}

		var meal Meal
		if err := dec.Decode(&meal); err != nil {
			return fmt.Errorf("meal %q: %w", key, err)
		}
		meal.Name = key

		// Duplicate keys: last one wins, first position kept
		if i := meals.index(key); i >= 0 {
			meals[i] = meal
			continue
		}
		meals = append(meals, meal)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*m = meals
	return nil
}

func (m Meals) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, meal := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(meal.Name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(meal)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the meal stored under name
func (m Meals) Get(name string) (Meal, bool) {
	if i := m.index(name); i >= 0 {
		return m[i], true
	}
	return Meal{}, false
}

func (m Meals) index(name string) int {
	for i := range m {
		if m[i].Name == name {
			return i
		}
	}
	return -1
}

var requiredSections = []string{"workoutPlan", "dietPlan", "motivation"}

// DecodePlan parses and validates untrusted plan JSON. Every failure wraps ErrParse.
func DecodePlan(data []byte) (*FitnessPlan, error) {
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("%w: response is not a JSON object: %v", ErrParse, err)
	}

	for _, key := range requiredSections {
		raw, ok := sections[key]
		raw = bytes.TrimSpace(raw)
		if !ok || len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			return nil, fmt.Errorf("%w: missing %q", ErrParse, key)
		}
		if raw[0] != '{' {
			return nil, fmt.Errorf("%w: %q must be an object", ErrParse, key)
		}
	}

	var plan FitnessPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}

	return &plan, nil
}

// Validate checks the keys the rest of the system relies on
func (p *FitnessPlan) Validate() error {
	for i, day := range p.WorkoutPlan.WeeklySchedule {
		if strings.TrimSpace(day.Day) == "" {
			return fmt.Errorf("%w: weeklySchedule[%d] has no day", ErrParse, i)
		}
		for j, ex := range day.Exercises {
			if strings.TrimSpace(ex.Name) == "" {
				return fmt.Errorf("%w: weeklySchedule[%d].exercises[%d] has no name", ErrParse, i, j)
			}
		}
	}
	for _, meal := range p.DietPlan.Meals {
		if strings.TrimSpace(meal.Name) == "" {
			return fmt.Errorf("%w: meal with empty name", ErrParse)
		}
	}
	return nil
}

// Clone returns a deep copy of the plan
func (p *FitnessPlan) Clone() *FitnessPlan {
	if p == nil {
		return nil
	}

	out := &FitnessPlan{
		WorkoutPlan: WorkoutPlan{
			Overview: p.WorkoutPlan.Overview,
			Tips:     cloneStrings(p.WorkoutPlan.Tips),
		},
		DietPlan: DietPlan{
			DailyCalories: p.DietPlan.DailyCalories,
			Macros:        p.DietPlan.Macros,
			Hydration:     p.DietPlan.Hydration,
			Tips:          cloneStrings(p.DietPlan.Tips),
		},
		Motivation: Motivation{
			Quote:           p.Motivation.Quote,
			DailyTips:       cloneStrings(p.Motivation.DailyTips),
			ExpectedResults: p.Motivation.ExpectedResults,
		},
	}

	if p.WorkoutPlan.WeeklySchedule != nil {
		out.WorkoutPlan.WeeklySchedule = make([]WorkoutDay, len(p.WorkoutPlan.WeeklySchedule))
		for i, day := range p.WorkoutPlan.WeeklySchedule {
			if day.Exercises != nil {
				day.Exercises = append(make([]Exercise, 0, len(day.Exercises)), day.Exercises...)
			}
			out.WorkoutPlan.WeeklySchedule[i] = day
		}
	}

	if p.DietPlan.Meals != nil {
		out.DietPlan.Meals = make(Meals, len(p.DietPlan.Meals))
		for i, meal := range p.DietPlan.Meals {
			meal.Items = cloneStrings(meal.Items)
			out.DietPlan.Meals[i] = meal
		}
	}

	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append(make([]string, 0, len(in)), in...)
}
