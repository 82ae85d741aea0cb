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

const mealsCollection = "meals"

// MongoMealRepository implements domain.MealRepository using MongoDB
type MongoMealRepository struct {
	collection *mongo.Collection
}

// NewMongoMealRepository creates the repository and ensures its indexes
func NewMongoMealRepository(db *mongo.Database) *MongoMealRepository {
	collection := db.Collection(mealsCollection)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "created_at", Value: 1},
		},
	})

	return &MongoMealRepository{
		collection: collection,
	}
}

// Create saves a new meal
func (r *MongoMealRepository) Create(ctx context.Context, meal *domain.Meal) error {
	objID := primitive.NewObjectID()
	meal.ID = objID.Hex()
	if meal.CreatedAt.IsZero() {
		meal.CreatedAt = time.Now().UTC()
	}

	doc := bson.M{
		"_id":       objID,
		"user_id":   meal.UserID,
		"image_url": meal.ImageURL,
		"food_name": meal.FoodName,
		"calories":  meal.Calories,
		"macros": bson.M{
			"protein": meal.Macros.Protein,
			"carbs":   meal.Macros.Carbs,
			"fat":     meal.Macros.Fat,
		},
		"ai_advice":  meal.AIAdvice,
		"created_at": meal.CreatedAt,
	}
	if meal.Date != "" {
		doc["date"] = meal.Date
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert meal: %w", err)
	}
	return nil
}

func (r *MongoMealRepository) GetByID(ctx context.Context, id string) (*domain.Meal, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	var raw bson.M
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get meal: %w", err)
	}
	return mapBsonToMeal(raw), nil
}

// ListByUserID retrieves every meal of a user, oldest first
func (r *MongoMealRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Meal, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return r.find(ctx, bson.M{"user_id": userID}, opts)
}

// ListMissingDate finds legacy meals stored without a calendar day
func (r *MongoMealRepository) ListMissingDate(ctx context.Context) ([]domain.Meal, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"date": bson.M{"$exists": false}},
			bson.M{"date": ""},
			bson.M{"date": nil},
		},
	}
	return r.find(ctx, filter, options.Find())
}

func (r *MongoMealRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.Meal, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find meals: %w", err)
	}
	defer cursor.Close(ctx)

	meals := []domain.Meal{}
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode meal: %w", err)
		}
		meals = append(meals, *mapBsonToMeal(raw))
	}
	return meals, cursor.Err()
}

func (r *MongoMealRepository) SetDate(ctx context.Context, id string, date string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid meal id: %w", err)
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{"date": date}})
	if err != nil {
		return fmt.Errorf("failed to set meal date: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoMealRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrNotFound
	}
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("failed to delete meal: %w", err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// mapBsonToMeal tolerates documents written by older clients, where numbers
// may be strings or ints and the date field may be absent.
func mapBsonToMeal(raw bson.M) *domain.Meal {
	meal := &domain.Meal{}

	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		meal.ID = oid.Hex()
	} else if id, ok := raw["_id"].(string); ok {
		meal.ID = id
	}
	if userID, ok := raw["user_id"].(string); ok {
		meal.UserID = userID
	}
	if url, ok := raw["image_url"].(string); ok {
		meal.ImageURL = url
	}
	if name, ok := raw["food_name"].(string); ok {
		meal.FoodName = name
	}
	if advice, ok := raw["ai_advice"].(string); ok {
		meal.AIAdvice = advice
	}
	if date, ok := raw["date"].(string); ok {
		meal.Date = date
	}
	meal.Calories = nutrition.Number(raw["calories"])

	if macros := embeddedDoc(raw["macros"]); macros != nil {
		meal.Macros = domain.Macros{
			Protein: nutrition.Number(macros["protein"]),
			Carbs:   nutrition.Number(macros["carbs"]),
			Fat:     nutrition.Number(macros["fat"]),
		}
	}
	if created, ok := raw["created_at"].(primitive.DateTime); ok {
		meal.CreatedAt = created.Time()
	}

	return meal
}

// embeddedDoc normalises a nested document regardless of how the driver decoded it
func embeddedDoc(v interface{}) bson.M {
	switch doc := v.(type) {
	case bson.M:
		return doc
	case map[string]interface{}:
		return bson.M(doc)
	case bson.D:
		return doc.Map()
	}
	return nil
}
