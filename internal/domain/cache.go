package domain

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned when a key is absent or expired
var ErrCacheMiss = errors.New("cache miss")

// CacheRepository is a JSON key/value cache with TTLs
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// DataChangedEvent announces that a user's meals or profile changed
type DataChangedEvent struct {
	UserID     string    `json:"user_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ChangeNotifier publishes data-changed events to interested listeners
type ChangeNotifier interface {
	PublishDataChanged(ctx context.Context, event DataChangedEvent) error
}
