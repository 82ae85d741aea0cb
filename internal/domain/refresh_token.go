package domain

import (
	"context"
	"time"
)

// RefreshToken is a stored, hashed session token
type RefreshToken struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	UserID    string    `bson:"user_id" json:"user_id"`
	TokenHash string    `bson:"token_hash" json:"-"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UserAgent string    `bson:"user_agent" json:"user_agent"`
	Revoked   bool      `bson:"revoked" json:"revoked"`
}

// IsValid reports whether the token can still be exchanged at now
func (r *RefreshToken) IsValid(now time.Time) bool {
	return !r.Revoked && now.Before(r.ExpiresAt)
}

// RefreshTokenRepository stores refresh tokens by hash
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *RefreshToken) error
	// FindByHash returns ErrNotFound for unknown or revoked tokens
	FindByHash(ctx context.Context, hash string) (*RefreshToken, error)
	RevokeByHash(ctx context.Context, hash string) error
	RevokeAllByUserID(ctx context.Context, userID string) error
}
