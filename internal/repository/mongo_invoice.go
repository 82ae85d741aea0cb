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

// MongoInvoiceRepository implements domain.InvoiceRepository
type MongoInvoiceRepository struct {
	collection *mongo.Collection
}

func NewMongoInvoiceRepository(db *mongo.Database) *MongoInvoiceRepository {
	coll := db.Collection("invoices")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Webhooks look invoices up by the provider session
	_, _ = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "payment_session_id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "plan_id", Value: 1}, {Key: "status", Value: 1}}},
	})

	return &MongoInvoiceRepository{
		collection: coll,
	}
}

func (r *MongoInvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	now := time.Now().UTC()
	invoice.CreatedAt = now
	invoice.UpdatedAt = now

	objID := primitive.NewObjectID()
	invoice.ID = objID.Hex()

	doc := bson.M{
		"_id":                objID,
		"user_id":            invoice.UserID,
		"plan_id":            invoice.PlanID,
		"amount":             invoice.Amount,
		"status":             invoice.Status,
		"va_number":          invoice.VANumber,
		"payment_method":     invoice.PaymentMethod,
		"payment_session_id": invoice.PaymentSessionID,
		"expiry_date":        invoice.ExpiryDate,
		"created_at":         invoice.CreatedAt,
		"updated_at":         invoice.UpdatedAt,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

func (r *MongoInvoiceRepository) GetByID(ctx context.Context, id string) (*domain.Invoice, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": objID}, nil)
}

// GetPendingByUserAndPlan finds the newest unexpired pending invoice so checkout can reuse it
func (r *MongoInvoiceRepository) GetPendingByUserAndPlan(ctx context.Context, userID, planID string) (*domain.Invoice, error) {
	filter := bson.M{
		"user_id":     userID,
		"plan_id":     planID,
		"status":      domain.InvoiceStatusPending,
		"expiry_date": bson.M{"$gt": time.Now().UTC()},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	return r.findOne(ctx, filter, opts)
}

func (r *MongoInvoiceRepository) GetByPaymentSessionID(ctx context.Context, sessionID string) (*domain.Invoice, error) {
	return r.findOne(ctx, bson.M{"payment_session_id": sessionID}, nil)
}

func (r *MongoInvoiceRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*domain.Invoice, error) {
	if opts == nil {
		opts = options.FindOne()
	}
	var raw bson.M
	if err := r.collection.FindOne(ctx, filter, opts).Decode(&raw); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return mapBsonToInvoice(raw), nil
}

func (r *MongoInvoiceRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("invalid invoice id: %w", err)
	}

	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to update invoice status: %w", err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func mapBsonToInvoice(raw bson.M) *domain.Invoice {
	invoice := &domain.Invoice{}

	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		invoice.ID = oid.Hex()
	}
	if userID, ok := raw["user_id"].(string); ok {
		invoice.UserID = userID
	}
	if planID, ok := raw["plan_id"].(string); ok {
		invoice.PlanID = planID
	}
	if amount, ok := raw["amount"].(int64); ok {
		invoice.Amount = amount
	} else if amount, ok := raw["amount"].(int32); ok {
		invoice.Amount = int64(amount)
	}
	if status, ok := raw["status"].(string); ok {
		invoice.Status = status
	}
	if vaNum, ok := raw["va_number"].(string); ok {
		invoice.VANumber = vaNum
	}
	if method, ok := raw["payment_method"].(string); ok {
		invoice.PaymentMethod = method
	}
	if sessionID, ok := raw["payment_session_id"].(string); ok {
		invoice.PaymentSessionID = sessionID
	}
	if expiry, ok := raw["expiry_date"].(primitive.DateTime); ok {
		invoice.ExpiryDate = expiry.Time()
	}
	if created, ok := raw["created_at"].(primitive.DateTime); ok {
		invoice.CreatedAt = created.Time()
	}
	if updated, ok := raw["updated_at"].(primitive.DateTime); ok {
		invoice.UpdatedAt = updated.Time()
	}

	return invoice
}
