package domain

import (
	"context"
	"time"
)

// Subscription status values reported to clients
const (
	SubscriptionStatusFree    = "free"
	SubscriptionStatusActive  = "active"
	SubscriptionStatusExpired = "expired"
)

// User is an account linked to a Firebase identity
type User struct {
	ID                  string     `bson:"_id,omitempty" json:"id"`
	FirebaseUID         string     `bson:"firebase_uid,omitempty" json:"firebase_uid"`
	Email               string     `bson:"email" json:"email"`
	Name                string     `bson:"name" json:"name"`
	SubscriptionEndDate *time.Time `bson:"subscription_end_date,omitempty" json:"subscription_end_date,omitempty"`
	CreatedAt           time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `bson:"updated_at" json:"updated_at"`
}

// SubscriptionStatus derives the billing state at the given instant.
// A user who never paid is "free"; a lapsed subscription is "expired".
func (u *User) SubscriptionStatus(now time.Time) string {
	if u.SubscriptionEndDate == nil {
		return SubscriptionStatusFree
	}
	if u.SubscriptionEndDate.After(now) {
		return SubscriptionStatusActive
	}
	return SubscriptionStatusExpired
}

// IsPremium reports whether the user has a running subscription
func (u *User) IsPremium(now time.Time) bool {
	return u.SubscriptionStatus(now) == SubscriptionStatusActive
}

// UserRepository defines operations for managing users
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByFirebaseUID(ctx context.Context, uid string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdateFirebaseUID(ctx context.Context, userID string, firebaseUID string) error
	UpdateSubscriptionEndDate(ctx context.Context, userID string, endDate time.Time) error
	Delete(ctx context.Context, id string) error
}
