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

// MongoRefreshTokenRepository implements domain.RefreshTokenRepository using MongoDB
type MongoRefreshTokenRepository struct {
	collection *mongo.Collection
}

func NewMongoRefreshTokenRepository(db *mongo.Database) *MongoRefreshTokenRepository {
	collection := db.Collection("refresh_tokens")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, _ = collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token_hash", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{
			// Mongo drops the document once expires_at passes
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	})

	return &MongoRefreshTokenRepository{
		collection: collection,
	}
}

func (r *MongoRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	objID := primitive.NewObjectID()
	token.ID = objID.Hex()
	token.CreatedAt = time.Now().UTC()

	doc := bson.M{
		"_id":        objID,
		"user_id":    token.UserID,
		"token_hash": token.TokenHash,
		"expires_at": token.ExpiresAt,
		"created_at": token.CreatedAt,
		"user_agent": token.UserAgent,
		"revoked":    false,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

func (r *MongoRefreshTokenRepository) FindByHash(ctx context.Context, hash string) (*domain.RefreshToken, error) {
	var raw bson.M
	err := r.collection.FindOne(ctx, bson.M{
		"token_hash": hash,
		"revoked":    false,
	}).Decode(&raw)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find refresh token: %w", err)
	}
	return mapBsonToRefreshToken(raw), nil
}

func (r *MongoRefreshTokenRepository) RevokeByHash(ctx context.Context, hash string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"token_hash": hash},
		bson.M{"$set": bson.M{"revoked": true}},
	)
	return err
}

// RevokeAllByUserID signs the user out everywhere
func (r *MongoRefreshTokenRepository) RevokeAllByUserID(ctx context.Context, userID string) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"user_id": userID, "revoked": false},
		bson.M{"$set": bson.M{"revoked": true}},
	)
	return err
}

func mapBsonToRefreshToken(raw bson.M) *domain.RefreshToken {
	token := &domain.RefreshToken{}
	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		token.ID = oid.Hex()
	}
	if userID, ok := raw["user_id"].(string); ok {
		token.UserID = userID
	}
	if hash, ok := raw["token_hash"].(string); ok {
		token.TokenHash = hash
	}
	if ua, ok := raw["user_agent"].(string); ok {
		token.UserAgent = ua
	}
	if revoked, ok := raw["revoked"].(bool); ok {
		token.Revoked = revoked
	}
	if expires, ok := raw["expires_at"].(primitive.DateTime); ok {
		token.ExpiresAt = expires.Time()
	}
	if created, ok := raw["created_at"].(primitive.DateTime); ok {
		token.CreatedAt = created.Time()
	}
	return token
}
