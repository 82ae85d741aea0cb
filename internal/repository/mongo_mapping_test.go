package repository

import (
	"testing"
	"time"

	"github.com/mansoorceksport/platepal/internal/domain"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMapBsonToMeal_LegacyShapes(t *testing.T) {
	oid := primitive.NewObjectID()
	created := time.Date(2025, 6, 2, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  bson.M
		want domain.Meal
	}{
		{
			name: "well formed",
			raw: bson.M{
				"_id":        oid,
				"user_id":    "u1",
				"food_name":  "Nasi goreng",
				"calories":   float64(650),
				"macros":     bson.M{"protein": 20.5, "carbs": float64(80), "fat": float64(25)},
				"date":       "2025-06-02",
				"created_at": primitive.NewDateTimeFromTime(created),
			},
			want: domain.Meal{
				ID: oid.Hex(), UserID: "u1", FoodName: "Nasi goreng", Calories: 650,
				Macros: domain.Macros{Protein: 20.5, Carbs: 80, Fat: 25},
				Date:   "2025-06-02", CreatedAt: created,
			},
		},
		{
			name: "string and int numbers, ordered macros, no date",
			raw: bson.M{
				"_id":        oid,
				"user_id":    "u1",
				"calories":   "420",
				"macros":     bson.D{{Key: "protein", Value: int32(30)}, {Key: "carbs", Value: "45.5"}, {Key: "fat", Value: int64(12)}},
				"created_at": primitive.NewDateTimeFromTime(created),
			},
			want: domain.Meal{
				ID: oid.Hex(), UserID: "u1", Calories: 420,
				Macros:    domain.Macros{Protein: 30, Carbs: 45.5, Fat: 12},
				CreatedAt: created,
			},
		},
		{
			name: "garbage values become zero",
			raw: bson.M{
				"_id":      oid,
				"calories": "lots",
				"macros":   "n/a",
			},
			want: domain.Meal{ID: oid.Hex()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapBsonToMeal(tt.raw)
			assert.Equal(t, tt.want.ID, got.ID)
			assert.Equal(t, tt.want.UserID, got.UserID)
			assert.Equal(t, tt.want.FoodName, got.FoodName)
			assert.Equal(t, tt.want.Calories, got.Calories)
			assert.Equal(t, tt.want.Macros, got.Macros)
			assert.Equal(t, tt.want.Date, got.Date)
			assert.True(t, tt.want.CreatedAt.Equal(got.CreatedAt))
		})
	}
}

func TestMapBsonToProfile(t *testing.T) {
	raw := bson.M{
		"_id":            primitive.NewObjectID(),
		"user_id":        "u1",
		"goal":           "lose",
		"age":            int32(30),
		"gender":         "male",
		"weight":         float64(80),
		"height":         int32(180),
		"activity_level": "moderate",
		"macro_targets":  bson.M{"calories": int32(2075), "protein": int32(140), "carbs": int64(156), "fat": float64(69)},
	}

	p := mapBsonToProfile(raw)

	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, domain.GoalLose, p.Goal)
	assert.Equal(t, domain.GenderMale, p.Gender)
	assert.Equal(t, domain.ActivityModerate, p.ActivityLevel)
	assert.Equal(t, 30, p.Age)
	assert.Equal(t, 80.0, p.Weight)
	assert.Equal(t, 180.0, p.Height)
	assert.Equal(t, domain.MacroTargets{Calories: 2075, Protein: 140, Carbs: 156, Fat: 69}, p.MacroTargets)
}

func TestMapBsonToUser_SubscriptionEndDate(t *testing.T) {
	end := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	u := mapBsonToUser(bson.M{
		"_id":                   primitive.NewObjectID(),
		"email":                 "a@b.c",
		"subscription_end_date": primitive.NewDateTimeFromTime(end),
	})
	if assert.NotNil(t, u.SubscriptionEndDate) {
		assert.True(t, end.Equal(*u.SubscriptionEndDate))
	}

	free := mapBsonToUser(bson.M{"email": "x@y.z"})
	assert.Nil(t, free.SubscriptionEndDate)
}
