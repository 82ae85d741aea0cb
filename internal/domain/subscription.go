package domain

import (
	"context"
	"time"
)

// Subscription is the historical record of a paid access period
type Subscription struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    string    `bson:"user_id,omitempty" json:"user_id"`
	InvoiceID string    `bson:"invoice_id,omitempty" json:"invoice_id"`
	StartDate time.Time `bson:"start_date,omitempty" json:"start_date"`
	EndDate   time.Time `bson:"end_date,omitempty" json:"end_date"`
	CreatedAt time.Time `bson:"created_at,omitempty" json:"created_at"`
}

// CalculateNewEndDate stacks a purchased duration onto the current end date.
// A running subscription is extended from its end; a lapsed or missing one
// restarts from now. Times are normalised to UTC.
func CalculateNewEndDate(currentEnd *time.Time, durationMonths int, now time.Time) time.Time {
	now = now.UTC()
	if currentEnd != nil && currentEnd.After(now) {
		return currentEnd.UTC().AddDate(0, durationMonths, 0)
	}
	return now.AddDate(0, durationMonths, 0)
}

// SubscriptionRepository defines operations for managing subscriptions
type SubscriptionRepository interface {
	Create(ctx context.Context, subscription *Subscription) error
	GetByUserID(ctx context.Context, userID string) ([]*Subscription, error)
	GetActiveByUserID(ctx context.Context, userID string) (*Subscription, error)
}
