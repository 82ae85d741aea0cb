package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/platepal/internal/domain"
	"github.com/mansoorceksport/platepal/internal/nutrition"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProfileRepository implements domain.ProfileRepository.
// Each user owns at most one profile document.
type MongoProfileRepository struct {
	collection *mongo.Collection
}

func NewMongoProfileRepository(db *mongo.Database) *MongoProfileRepository {
	coll := db.Collection("user_profiles")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "goal", Value: 1}}},
	})

	return &MongoProfileRepository{collection: coll}
}

func (r *MongoProfileRepository) GetByUserID(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var raw bson.M
	if err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return mapBsonToProfile(raw), nil
}

// Upsert creates the profile on first onboarding and replaces its fields afterwards
func (r *MongoProfileRepository) Upsert(ctx context.Context, profile *domain.UserProfile) error {
	now := time.Now().UTC()
	objID := primitive.NewObjectID()

	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":        objID,
			"created_at": now,
		},
		"$set": bson.M{
			"goal":           profile.Goal,
			"age":            profile.Age,
			"gender":         profile.Gender,
			"weight":         profile.Weight,
			"height":         profile.Height,
			"activity_level": profile.ActivityLevel,
			"macro_targets":  targetsDoc(profile.MacroTargets),
			"updated_at":     now,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var raw bson.M
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"user_id": profile.UserID}, update, opts).Decode(&raw)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	stored := mapBsonToProfile(raw)
	profile.ID = stored.ID
	profile.CreatedAt = stored.CreatedAt
	profile.UpdatedAt = stored.UpdatedAt
	return nil
}

// ListByGoals returns the profiles whose goal is one of goals
func (r *MongoProfileRepository) ListByGoals(ctx context.Context, goals []domain.Goal) ([]*domain.UserProfile, error) {
	values := make([]string, 0, len(goals))
	for _, g := range goals {
		values = append(values, string(g))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"goal": bson.M{"$in": values}})
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []*domain.UserProfile
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		profiles = append(profiles, mapBsonToProfile(raw))
	}
	return profiles, cursor.Err()
}

func (r *MongoProfileRepository) UpdateTargets(ctx context.Context, userID string, targets domain.MacroTargets) error {
	update := bson.M{
		"$set": bson.M{
			"macro_targets": targetsDoc(targets),
			"updated_at":    time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"user_id": userID}, update)
	if err != nil {
		return fmt.Errorf("failed to update targets: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func targetsDoc(t domain.MacroTargets) bson.M {
	return bson.M{
		"calories": t.Calories,
		"protein":  t.Protein,
		"carbs":    t.Carbs,
		"fat":      t.Fat,
	}
}

func mapBsonToProfile(raw bson.M) *domain.UserProfile {
	p := &domain.UserProfile{}

	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		p.ID = oid.Hex()
	}
	if userID, ok := raw["user_id"].(string); ok {
		p.UserID = userID
	}
	if goal, ok := raw["goal"].(string); ok {
		p.Goal = domain.Goal(goal)
	}
	if gender, ok := raw["gender"].(string); ok {
		p.Gender = domain.Gender(gender)
	}
	if level, ok := raw["activity_level"].(string); ok {
		p.ActivityLevel = domain.ActivityLevel(level)
	}
	p.Age = int(nutrition.Number(raw["age"]))
	p.Weight = nutrition.Number(raw["weight"])
	p.Height = nutrition.Number(raw["height"])

	if targets := embeddedDoc(raw["macro_targets"]); targets != nil {
		p.MacroTargets = domain.MacroTargets{
			Calories: int(nutrition.Number(targets["calories"])),
			Protein:  int(nutrition.Number(targets["protein"])),
			Carbs:    int(nutrition.Number(targets["carbs"])),
			Fat:      int(nutrition.Number(targets["fat"])),
		}
	}
	if created, ok := raw["created_at"].(primitive.DateTime); ok {
		p.CreatedAt = created.Time()
	}
	if updated, ok := raw["updated_at"].(primitive.DateTime); ok {
		p.UpdatedAt = updated.Time()
	}
	return p
}
