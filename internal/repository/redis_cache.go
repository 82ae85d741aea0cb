package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mansoorceksport/platepal/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const scanBatchSize = 100

// RedisCacheRepository implements domain.CacheRepository using Redis.
// Values are stored as JSON.
type RedisCacheRepository struct {
	client *redis.Client
}

func NewRedisCacheRepository(client *redis.Client) *RedisCacheRepository {
	return &RedisCacheRepository{
		client: client,
	}
}

// Get retrieves a value by key. Returns domain.ErrCacheMiss when absent.
func (r *RedisCacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	ctx, span := otel.Tracer("redis").Start(ctx, "redis.Get",
		trace.WithAttributes(attribute.String("cache.key", key)),
	)
	defer span.End()

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			span.SetAttributes(attribute.String("cache.result", "miss"))
			return domain.ErrCacheMiss
		}
		span.RecordError(err)
		return fmt.Errorf("redis get error: %w", err)
	}

	span.SetAttributes(attribute.String("cache.result", "hit"))
	if err := json.Unmarshal(data, dest); err != nil {
		span.RecordError(err)
		return fmt.Errorf("unmarshal error: %w", err)
	}
	return nil
}

// Set stores a value with TTL
func (r *RedisCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	ctx, span := otel.Tracer("redis").Start(ctx, "redis.Set",
		trace.WithAttributes(
			attribute.String("cache.key", key),
			attribute.Int64("cache.ttl_seconds", int64(ttl.Seconds())),
		),
	)
	defer span.End()

	data, err := json.Marshal(value)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("marshal error: %w", err)
	}

	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis set error: %w", err)
	}
	return nil
}

func (r *RedisCacheRepository) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	ctx, span := otel.Tracer("redis").Start(ctx, "redis.Delete",
		trace.WithAttributes(attribute.Int("cache.key_count", len(keys))),
	)
	defer span.End()

	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis delete error: %w", err)
	}
	return nil
}

// DeleteByPattern removes every key matching a glob pattern.
// Uses SCAN so large keyspaces don't block the server.
func (r *RedisCacheRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	ctx, span := otel.Tracer("redis").Start(ctx, "redis.DeleteByPattern",
		trace.WithAttributes(attribute.String("cache.pattern", pattern)),
	)
	defer span.End()

	var keys []string
	iter := r.client.Scan(ctx, 0, pattern, scanBatchSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("redis scan error: %w", err)
	}

	span.SetAttributes(attribute.Int("cache.matched_keys", len(keys)))
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}
