package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/platepal/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPlanRepository implements domain.PlanRepository
type MongoPlanRepository struct {
	collection *mongo.Collection
}

func NewMongoPlanRepository(db *mongo.Database) *MongoPlanRepository {
	coll := db.Collection("plans")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return &MongoPlanRepository{collection: coll}
}

func (r *MongoPlanRepository) GetByID(ctx context.Context, id string) (*domain.Plan, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var raw bson.M
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get plan: %w", err)
	}
	return mapBsonToPlan(raw), nil
}

// GetActivePlans lists purchasable plans, cheapest first
func (r *MongoPlanRepository) GetActivePlans(ctx context.Context) ([]*domain.Plan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "price", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"is_active": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list active plans: %w", err)
	}
	defer cursor.Close(ctx)

	plans := []*domain.Plan{}
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		plans = append(plans, mapBsonToPlan(raw))
	}
	return plans, cursor.Err()
}

// UpsertByCode inserts a plan or refreshes the existing one with the same code.
// Safe to run repeatedly from the seeder.
func (r *MongoPlanRepository) UpsertByCode(ctx context.Context, plan *domain.Plan) (bool, error) {
	now := time.Now().UTC()
	objID := primitive.NewObjectID()

	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":        objID,
			"code":       plan.Code,
			"created_at": now,
		},
		"$set": bson.M{
			"name":            plan.Name,
			"description":     plan.Description,
			"price":           plan.Price,
			"duration_months": plan.DurationMonths,
			"is_active":       plan.IsActive,
			"updated_at":      now,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"code": plan.Code}, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("failed to upsert plan %s: %w", plan.Code, err)
	}

	plan.UpdatedAt = now
	if result.UpsertedID != nil {
		plan.ID = objID.Hex()
		plan.CreatedAt = now
		return true, nil
	}
	return false, nil
}

func mapBsonToPlan(raw bson.M) *domain.Plan {
	plan := &domain.Plan{}

	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		plan.ID = oid.Hex()
	}
	if code, ok := raw["code"].(string); ok {
		plan.Code = code
	}
	if name, ok := raw["name"].(string); ok {
		plan.Name = name
	}
	if desc, ok := raw["description"].(string); ok {
		plan.Description = desc
	}
	if price, ok := raw["price"].(int64); ok {
		plan.Price = price
	} else if price, ok := raw["price"].(int32); ok {
		plan.Price = int64(price)
	}
	if duration, ok := raw["duration_months"].(int32); ok {
		plan.DurationMonths = int(duration)
	} else if duration, ok := raw["duration_months"].(int64); ok {
		plan.DurationMonths = int(duration)
	}
	if isActive, ok := raw["is_active"].(bool); ok {
		plan.IsActive = isActive
	}
	if created, ok := raw["created_at"].(primitive.DateTime); ok {
		plan.CreatedAt = created.Time()
	}
	if updated, ok := raw["updated_at"].(primitive.DateTime); ok {
		plan.UpdatedAt = updated.Time()
	}

	return plan
}
