// Package nutrition holds the pure target, calendar, aggregation and
// statistics logic. Nothing here performs I/O or keeps state.
package nutrition

import (
	"math"

	"github.com/mansoorceksport/platepal/internal/domain"
)

// activityMultipliers maps each activity level to its TDEE multiplier.
// Unknown levels fall back to sedentary.
var activityMultipliers = map[domain.ActivityLevel]float64{
	domain.ActivitySedentary:  1.2,
	domain.ActivityLight:      1.375,
	domain.ActivityModerate:   1.55,
	domain.ActivityActive:     1.725,
	domain.ActivityVeryActive: 1.9,
}

// Calorie adjustment applied on top of TDEE for each goal
const (
	loseFactor        = 0.80
	buildMuscleFactor = 1.15
)

// ActivityMultiplier returns the TDEE multiplier for level
func ActivityMultiplier(level domain.ActivityLevel) float64 {
	if m, ok := activityMultipliers[level]; ok {
		return m
	}
	return activityMultipliers[domain.ActivitySedentary]
}

// BMR computes basal metabolic rate with Mifflin-St Jeor.
// Every gender other than male uses the -161 constant.
func BMR(weightKg, heightCm float64, ageYears int, gender domain.Gender) float64 {
	bmr := 10*weightKg + 6.25*heightCm - 5*float64(ageYears)
	if gender == domain.GenderMale {
		return bmr + 5
	}
	return bmr - 161
}

// TDEE scales BMR by the activity multiplier
func TDEE(weightKg, heightCm float64, ageYears int, gender domain.Gender, activity domain.ActivityLevel) float64 {
	return BMR(weightKg, heightCm, ageYears, gender) * ActivityMultiplier(activity)
}

// CalculateMacroTargets derives daily calorie and macro targets from a profile.
// For the custom goal, supplied macros are returned untouched. A custom goal
// without supplied macros is seeded with maintenance values.
// Inputs are assumed to be validated by the caller.
func CalculateMacroTargets(
	goal domain.Goal,
	weightKg, heightCm float64,
	ageYears int,
	gender domain.Gender,
	activity domain.ActivityLevel,
	custom *domain.MacroTargets,
) domain.MacroTargets {
	if goal == domain.GoalCustom && custom != nil {
		return *custom
	}

	tdee := TDEE(weightKg, heightCm, ageYears, gender, activity)

	switch goal {
	case domain.GoalLose:
		calories := round(tdee * loseFactor)
		return domain.MacroTargets{
			Calories: calories,
			Protein:  round(weightKg * 2.0),
			Carbs:    round(float64(calories) * 0.30 / 4),
			Fat:      round(float64(calories) * 0.30 / 9),
		}
	case domain.GoalBuildMuscle:
		calories := round(tdee * buildMuscleFactor)
		return domain.MacroTargets{
			Calories: calories,
			Protein:  round(weightKg * 2.2),
			Carbs:    round(float64(calories) * 0.40 / 4),
			Fat:      round(float64(calories) * 0.25 / 9),
		}
	default:
		calories := round(tdee)
		protein := round(weightKg * 1.8)
		fat := round(float64(calories) * 0.30 / 9)
		// carbs absorb whatever protein and fat leave over
		carbs := round(float64(calories-protein*4-fat*9) / 4)
		return domain.MacroTargets{
			Calories: calories,
			Protein:  protein,
			Carbs:    carbs,
			Fat:      fat,
		}
	}
}

func round(v float64) int {
	return int(math.Round(v))
}
