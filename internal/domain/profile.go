package domain

import (
	"context"
	"time"
)

// Goal is the user's nutrition objective
type Goal string

const (
	GoalLose        Goal = "lose"
	GoalMaintain    Goal = "maintain"
	GoalBuildMuscle Goal = "build_muscle"
	GoalCustom      Goal = "custom"
)

// Valid reports whether g is a known goal
func (g Goal) Valid() bool {
	switch g {
	case GoalLose, GoalMaintain, GoalBuildMuscle, GoalCustom:
		return true
	}
	return false
}

// Gender as captured during onboarding
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Valid reports whether g is a known gender value
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// ActivityLevel describes typical weekly activity
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// ActivityLevels lists every level from least to most active
var ActivityLevels = []ActivityLevel{
	ActivitySedentary,
	ActivityLight,
	ActivityModerate,
	ActivityActive,
	ActivityVeryActive,
}

// Valid reports whether a is a known activity level
func (a ActivityLevel) Valid() bool {
	for _, level := range ActivityLevels {
		if a == level {
			return true
		}
	}
	return false
}

// MacroTargets are daily goals. Calories in kcal, macros in grams.
type MacroTargets struct {
	Calories int `bson:"calories" json:"calories"`
	Protein  int `bson:"protein" json:"protein"`
	Carbs    int `bson:"carbs" json:"carbs"`
	Fat      int `bson:"fat" json:"fat"`
}

// UserProfile holds the biometrics used to derive macro targets
type UserProfile struct {
	ID            string        `bson:"_id,omitempty" json:"id"`
	UserID        string        `bson:"user_id" json:"user_id"`
	Goal          Goal          `bson:"goal" json:"goal"`
	Age           int           `bson:"age" json:"age"`
	Gender        Gender        `bson:"gender" json:"gender"`
	Weight        float64       `bson:"weight" json:"weight"` // kg
	Height        float64       `bson:"height" json:"height"` // cm
	ActivityLevel ActivityLevel `bson:"activity_level" json:"activity_level"`
	MacroTargets  MacroTargets  `bson:"macro_targets" json:"macro_targets"`
	CreatedAt     time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time     `bson:"updated_at" json:"updated_at"`
}

// ProfileRepository is the profile store contract.
// GetByUserID returns ErrNotFound for users who have not onboarded yet.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*UserProfile, error)
	Upsert(ctx context.Context, profile *UserProfile) error
	ListByGoals(ctx context.Context, goals []Goal) ([]*UserProfile, error)
	UpdateTargets(ctx context.Context, userID string, targets MacroTargets) error
}
