package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mansoorceksport/platepal/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisEventBus fans data-changed events out over a Redis pub/sub channel
// so every API replica can drop its derived caches.
type RedisEventBus struct {
	client  *redis.Client
	channel string
}

func NewRedisEventBus(client *redis.Client, channel string) *RedisEventBus {
	return &RedisEventBus{client: client, channel: channel}
}

// PublishDataChanged implements domain.ChangeNotifier
func (b *RedisEventBus) PublishDataChanged(ctx context.Context, event domain.DataChangedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", b.channel, err)
	}
	return nil
}

// Subscribe delivers events to handle until ctx is cancelled.
// Malformed payloads are logged and skipped.
func (b *RedisEventBus) Subscribe(ctx context.Context, handle func(context.Context, domain.DataChangedEvent)) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	// Wait for the subscription to be confirmed before reading
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", b.channel, err)
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event domain.DataChangedEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("[Events] Dropping malformed payload on %s: %v", b.channel, err)
				continue
			}
			handle(ctx, event)
		}
	}
}
