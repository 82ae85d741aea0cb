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

// MongoUserRepository implements domain.UserRepository
type MongoUserRepository struct {
	collection *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	coll := db.Collection("users")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// firebase_uid is sparse so accounts created before linking don't collide
	_, _ = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "firebase_uid", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})

	return &MongoUserRepository{
		collection: coll,
	}
}

func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	objID := primitive.NewObjectID()
	user.ID = objID.Hex()

	doc := bson.M{
		"_id":        objID,
		"email":      user.Email,
		"name":       user.Name,
		"created_at": user.CreatedAt,
		"updated_at": user.UpdatedAt,
	}
	if user.FirebaseUID != "" {
		doc["firebase_uid"] = user.FirebaseUID
	}
	if user.SubscriptionEndDate != nil {
		doc["subscription_end_date"] = user.SubscriptionEndDate.UTC()
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) GetByFirebaseUID(ctx context.Context, uid string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"firebase_uid": uid})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var raw bson.M
	if err := r.collection.FindOne(ctx, filter).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return mapBsonToUser(raw), nil
}

func (r *MongoUserRepository) Update(ctx context.Context, user *domain.User) error {
	objID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}

	user.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"name":       user.Name,
		"email":      user.Email,
		"updated_at": user.UpdatedAt,
	}
	if user.FirebaseUID != "" {
		set["firebase_uid"] = user.FirebaseUID
	}
	if user.SubscriptionEndDate != nil {
		set["subscription_end_date"] = user.SubscriptionEndDate.UTC()
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateFirebaseUID links an existing account to a Firebase identity
func (r *MongoUserRepository) UpdateFirebaseUID(ctx context.Context, userID string, firebaseUID string) error {
	return r.setFields(ctx, userID, bson.M{"firebase_uid": firebaseUID})
}

// UpdateSubscriptionEndDate sets the premium expiry
func (r *MongoUserRepository) UpdateSubscriptionEndDate(ctx context.Context, userID string, endDate time.Time) error {
	return r.setFields(ctx, userID, bson.M{"subscription_end_date": endDate.UTC()})
}

func (r *MongoUserRepository) setFields(ctx context.Context, userID string, set bson.M) error {
	objID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}
	set["updated_at"] = time.Now().UTC()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}
	_, err = r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	return err
}

func mapBsonToUser(raw bson.M) *domain.User {
	user := &domain.User{}
	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		user.ID = oid.Hex()
	}
	if uid, ok := raw["firebase_uid"].(string); ok {
		user.FirebaseUID = uid
	}
	if email, ok := raw["email"].(string); ok {
		user.Email = email
	}
	if name, ok := raw["name"].(string); ok {
		user.Name = name
	}
	if created, ok := raw["created_at"].(primitive.DateTime); ok {
		user.CreatedAt = created.Time()
	}
	if updated, ok := raw["updated_at"].(primitive.DateTime); ok {
		user.UpdatedAt = updated.Time()
	}
	if subEnd, ok := raw["subscription_end_date"].(primitive.DateTime); ok {
		t := subEnd.Time()
		user.SubscriptionEndDate = &t
	}
	return user
}
