package domain

import (
	"context"
	"time"
)

// Plan is a purchasable premium subscription
type Plan struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	Code           string    `bson:"code" json:"code"`
	Name           string    `bson:"name" json:"name"`
	Description    string    `bson:"description" json:"description"`
	Price          int64     `bson:"price" json:"price"`
	DurationMonths int       `bson:"duration_months" json:"duration_months"`
	IsActive       bool      `bson:"is_active" json:"is_active"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}

// PlanRepository defines operations for managing plans
type PlanRepository interface {
	GetByID(ctx context.Context, id string) (*Plan, error)
	GetActivePlans(ctx context.Context) ([]*Plan, error)
	// UpsertByCode inserts or refreshes a plan keyed by its code
	UpsertByCode(ctx context.Context, plan *Plan) (created bool, err error)
}
