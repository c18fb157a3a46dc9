package service

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/mansoorceksport/fitcoach/internal/domain"
)

const (
	// Plan Prompt Template
	planPromptTmplStr = `You are an expert fitness coach and nutritionist. Generate a comprehensive, personalized fitness and diet plan based on the following user information:

Name: {{.Name}}
Age: {{.Age}}
Gender: {{.Gender}}
Height: {{.Height}} cm
Weight: {{.Weight}} kg
BMI: {{.BMI}}
Fitness Goal: {{.Goal}}
Current Fitness Level: {{.FitnessLevel}}
Workout Location: {{.Location}}
Dietary Preference: {{.Diet}}
{{- if .MedicalHistory}}
Medical History: {{.MedicalHistory}}
{{- end}}
{{- if .StressLevel}}
Stress Level: {{.StressLevel}}
{{- end}}

Please provide a detailed response in the following JSON format (respond ONLY with valid JSON, no markdown formatting):

` + planJSONExample

	planJSONExample = `{
  "workoutPlan": {
    "overview": "Brief overview of the workout strategy",
    "weeklySchedule": [
      {
        "day": "Monday",
        "focus": "e.g., Upper Body Strength",
        "exercises": [
          {
            "name": "Exercise name",
            "sets": "3-4",
            "reps": "8-12",
            "rest": "60-90 seconds",
            "description": "Brief form tips"
          }
        ],
        "duration": "45-60 minutes"
      }
    ],
    "tips": ["Important workout tips"]
  },
  "dietPlan": {
    "dailyCalories": "e.g., 2000-2200",
    "macros": {
      "protein": "e.g., 150g",
      "carbs": "e.g., 200g",
      "fats": "e.g., 60g"
    },
    "meals": {
      "breakfast": {
        "time": "7:00-8:00 AM",
        "items": ["meal items"],
        "calories": "~500"
      },
      "midMorningSnack": {
        "time": "10:00-10:30 AM",
        "items": ["snack items"],
        "calories": "~200"
      },
      "lunch": {
        "time": "12:30-1:30 PM",
        "items": ["meal items"],
        "calories": "~600"
      },
      "eveningSnack": {
        "time": "4:00-4:30 PM",
        "items": ["snack items"],
        "calories": "~200"
      },
      "dinner": {
        "time": "7:00-8:00 PM",
        "items": ["meal items"],
        "calories": "~500"
      }
    },
    "hydration": "Daily water intake recommendation",
    "tips": ["Important diet tips"]
  },
  "motivation": {
    "quote": "An inspiring fitness quote",
    "dailyTips": ["Lifestyle and posture tips"],
    "expectedResults": "What to expect in 4-8 weeks"
  }
}`

	quotePrompt = "Generate a short, powerful, and unique motivational fitness quote (max 15 words). Return ONLY the quote text, no quotation marks or extra formatting."
)

var planPromptTmpl = template.Must(template.New("plan").Parse(planPromptTmplStr))

// planPromptContext holds data for the plan template
type planPromptContext struct {
	Name           string
	Age            int
	Gender         domain.Gender
	Height         string
	Weight         string
	BMI            string
	Goal           domain.Goal
	FitnessLevel   domain.FitnessLevel
	Location       domain.Location
	Diet           domain.Diet
	MedicalHistory string
	StressLevel    domain.StressLevel
}

// BuildPlanPrompt renders the plan prompt for a profile
func BuildPlanPrompt(profile domain.UserProfile) (string, error) {
	data := planPromptContext{
		Name:           profile.Name,
		Age:            profile.Age,
		Gender:         profile.Gender,
		Height:         formatNumber(profile.Height),
		Weight:         formatNumber(profile.Weight),
		BMI:            fmt.Sprintf("%.1f", profile.BMI()),
		Goal:           profile.Goal,
		FitnessLevel:   profile.FitnessLevel,
		Location:       profile.Location,
		Diet:           profile.Diet,
		MedicalHistory: profile.MedicalHistory,
		StressLevel:    profile.StressLevel,
	}

	var buf bytes.Buffer
	if err := planPromptTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to generate plan prompt: %w", err)
	}
	return buf.String(), nil
}

// formatNumber prints 170 as "170" and 72.5 as "72.5"
func formatNumber(v float64) string {
	return fmt.Sprintf("%g", v)
}
