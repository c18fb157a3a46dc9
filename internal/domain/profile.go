package domain

import (
	"fmt"
	"math"
	"strings"
)

// Gender options accepted by the intake form
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Goal is the user's primary fitness goal
type Goal string

const (
	GoalWeightLoss     Goal = "weight-loss"
	GoalMuscleGain     Goal = "muscle-gain"
	GoalMaintenance    Goal = "maintenance"
	GoalEndurance      Goal = "endurance"
	GoalFlexibility    Goal = "flexibility"
	GoalGeneralFitness Goal = "general-fitness"
)

// FitnessLevel is the user's self-reported training level
type FitnessLevel string

const (
	LevelBeginner     FitnessLevel = "beginner"
	LevelIntermediate FitnessLevel = "intermediate"
	LevelAdvanced     FitnessLevel = "advanced"
)

// Location is where the user works out
type Location string

const (
	LocationGym     Location = "gym"
	LocationHome    Location = "home"
	LocationOutdoor Location = "outdoor"
)

// Diet is the user's dietary preference
type Diet string

const (
	DietVeg    Diet = "veg"
	DietNonVeg Diet = "non-veg"
	DietVegan  Diet = "vegan"
	DietKeto   Diet = "keto"
	DietPaleo  Diet = "paleo"
)

// StressLevel is the user's self-reported stress
type StressLevel string

const (
	StressLow      StressLevel = "low"
	StressModerate StressLevel = "moderate"
	StressHigh     StressLevel = "high"
)

// Form bounds
const (
	MinAge    = 13
	MaxAge    = 100
	MinHeight = 100.0
	MaxHeight = 250.0
	MinWeight = 30.0
	MaxWeight = 300.0
)

// UserProfile is the biometric and preference data submitted through the intake form
type UserProfile struct {
	Name           string       `json:"name" bson:"name"`
	Age            int          `json:"age" bson:"age"`
	Gender         Gender       `json:"gender" bson:"gender"`
	Height         float64      `json:"height" bson:"height"` // cm
	Weight         float64      `json:"weight" bson:"weight"` // kg
	Goal           Goal         `json:"goal" bson:"goal"`
	FitnessLevel   FitnessLevel `json:"fitnessLevel" bson:"fitness_level"`
	Location       Location     `json:"location" bson:"location"`
	Diet           Diet         `json:"diet" bson:"diet"`
	MedicalHistory string       `json:"medicalHistory,omitempty" bson:"medical_history,omitempty"`
	StressLevel    StressLevel  `json:"stressLevel,omitempty" bson:"stress_level,omitempty"`
}

// Validate checks that every field is present and inside the form bounds
func (p *UserProfile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	if p.Age < MinAge || p.Age > MaxAge {
		return fmt.Errorf("%w: age must be between %d and %d", ErrInvalidProfile, MinAge, MaxAge)
	}
	if p.Height < MinHeight || p.Height > MaxHeight {
		return fmt.Errorf("%w: height must be between %.0f and %.0f cm", ErrInvalidProfile, MinHeight, MaxHeight)
	}
	if p.Weight < MinWeight || p.Weight > MaxWeight {
		return fmt.Errorf("%w: weight must be between %.0f and %.0f kg", ErrInvalidProfile, MinWeight, MaxWeight)
	}

	switch p.Gender {
	case GenderMale, GenderFemale, GenderOther:
	default:
		return fmt.Errorf("%w: unknown gender %q", ErrInvalidProfile, p.Gender)
	}
	switch p.Goal {
	case GoalWeightLoss, GoalMuscleGain, GoalMaintenance, GoalEndurance, GoalFlexibility, GoalGeneralFitness:
	default:
		return fmt.Errorf("%w: unknown goal %q", ErrInvalidProfile, p.Goal)
	}
	switch p.FitnessLevel {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
	default:
		return fmt.Errorf("%w: unknown fitness level %q", ErrInvalidProfile, p.FitnessLevel)
	}
	switch p.Location {
	case LocationGym, LocationHome, LocationOutdoor:
	default:
		return fmt.Errorf("%w: unknown location %q", ErrInvalidProfile, p.Location)
	}
	switch p.Diet {
	case DietVeg, DietNonVeg, DietVegan, DietKeto, DietPaleo:
	default:
		return fmt.Errorf("%w: unknown diet %q", ErrInvalidProfile, p.Diet)
	}
	switch p.StressLevel {
	case "", StressLow, StressModerate, StressHigh:
	default:
		return fmt.Errorf("%w: unknown stress level %q", ErrInvalidProfile, p.StressLevel)
	}

	return nil
}

// BMI returns the body mass index for the profile
func (p *UserProfile) BMI() float64 {
	return CalculateBMI(p.Height, p.Weight)
}

// GoalLabel returns the goal with its first dash replaced by a space ("weight loss")
func (p *UserProfile) GoalLabel() string {
	return strings.Replace(string(p.Goal), "-", " ", 1)
}

// CalculateBMI computes weight / (height in meters)^2.
// Height is in centimeters and weight in kilograms.
func CalculateBMI(heightCM, weightKG float64) float64 {
	if heightCM <= 0 {
		return 0
	}
	heightM := heightCM / 100
	return weightKG / (heightM * heightM)
}

// BMICategory maps a BMI value to its category label
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25:
		return "Normal"
	case bmi < 30:
		return "Overweight"
	default:
		return "Obese"
	}
}

// RoundTo rounds v to the given number of decimal places
func RoundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
