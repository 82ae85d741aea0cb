package domain

import (
	"context"
	"time"
)

// Macros in grams
type Macros struct {
	Protein float64 `bson:"protein" json:"protein"`
	Carbs   float64 `bson:"carbs" json:"carbs"`
	Fat     float64 `bson:"fat" json:"fat"`
}

// Meal is a logged meal. Date, when set, is the authoritative "YYYY-MM-DD"
// calendar day; otherwise the day is taken from CreatedAt.
type Meal struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	ImageURL  string    `bson:"image_url" json:"image_url"`
	FoodName  string    `bson:"food_name" json:"food_name"`
	Calories  float64   `bson:"calories" json:"calories"`
	Macros    Macros    `bson:"macros" json:"macros"`
	AIAdvice  string    `bson:"ai_advice" json:"ai_advice"`
	Date      string    `bson:"date,omitempty" json:"date,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// MealAnalysis is what the vision model returns for a photo
type MealAnalysis struct {
	FoodName string  `json:"food_name"`
	Calories float64 `json:"calories"`
	Macros   Macros  `json:"macros"`
	AIAdvice string  `json:"ai_advice"`
}

// MealRepository is the meal store contract
type MealRepository interface {
	Create(ctx context.Context, meal *Meal) error
	GetByID(ctx context.Context, id string) (*Meal, error)
	// ListByUserID returns every meal the user has logged, oldest first
	ListByUserID(ctx context.Context, userID string) ([]Meal, error)
	ListMissingDate(ctx context.Context) ([]Meal, error)
	SetDate(ctx context.Context, id string, date string) error
	Delete(ctx context.Context, id string) error
}

// MealAnalyzer extracts nutrition estimates from a meal photo
type MealAnalyzer interface {
	AnalyzeMeal(ctx context.Context, imageData []byte) (*MealAnalysis, error)
}
