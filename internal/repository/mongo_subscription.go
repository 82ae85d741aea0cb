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

// MongoSubscriptionRepository implements domain.SubscriptionRepository.
// Rows are append-only; the user's subscription_end_date is the source of truth.
type MongoSubscriptionRepository struct {
	collection *mongo.Collection
}

func NewMongoSubscriptionRepository(db *mongo.Database) *MongoSubscriptionRepository {
	coll := db.Collection("subscriptions")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, _ = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "end_date", Value: -1}},
	})

	return &MongoSubscriptionRepository{
		collection: coll,
	}
}

func (r *MongoSubscriptionRepository) Create(ctx context.Context, subscription *domain.Subscription) error {
	subscription.CreatedAt = time.Now().UTC()

	objID := primitive.NewObjectID()
	subscription.ID = objID.Hex()

	doc := bson.M{
		"_id":        objID,
		"user_id":    subscription.UserID,
		"invoice_id": subscription.InvoiceID,
		"start_date": subscription.StartDate,
		"end_date":   subscription.EndDate,
		"created_at": subscription.CreatedAt,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

// GetByUserID returns the user's subscription history, newest first
func (r *MongoSubscriptionRepository) GetByUserID(ctx context.Context, userID string) ([]*domain.Subscription, error) {
	opts := options.Find().SetSort(bson.D{{Key: "end_date", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions by user: %w", err)
	}
	defer cursor.Close(ctx)

	subscriptions := []*domain.Subscription{}
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		subscriptions = append(subscriptions, mapBsonToSubscription(raw))
	}
	return subscriptions, cursor.Err()
}

func (r *MongoSubscriptionRepository) GetActiveByUserID(ctx context.Context, userID string) (*domain.Subscription, error) {
	filter := bson.M{
		"user_id":  userID,
		"end_date": bson.M{"$gt": time.Now().UTC()},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "end_date", Value: -1}})

	var raw bson.M
	if err := r.collection.FindOne(ctx, filter, opts).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get active subscription: %w", err)
	}
	return mapBsonToSubscription(raw), nil
}

func mapBsonToSubscription(raw bson.M) *domain.Subscription {
	sub := &domain.Subscription{}

	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		sub.ID = oid.Hex()
	}
	if userID, ok := raw["user_id"].(string); ok {
		sub.UserID = userID
	}
	if invoiceID, ok := raw["invoice_id"].(string); ok {
		sub.InvoiceID = invoiceID
	}
	if start, ok := raw["start_date"].(primitive.DateTime); ok {
		sub.StartDate = start.Time()
	}
	if end, ok := raw["end_date"].(primitive.DateTime); ok {
		sub.EndDate = end.Time()
	}
	if created, ok := raw["created_at"].(primitive.DateTime); ok {
		sub.CreatedAt = created.Time()
	}

	return sub
}
