package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/qudalautt/hub/internal/core/domain"
)

// orderChannel carries one JSON pending-order row per insert on the source.
const orderChannel = "orders:new"

// RedisAdapter delivers insert events for new pending orders over Pub/Sub.
// Delivery is best-effort; the poll driver reconciles anything missed while
// the channel is disconnected.
type RedisAdapter struct {
	client *redis.Client
	pubsub *redis.PubSub
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

// Subscribe starts delivering pending-order inserts. The returned channel is
// closed when the subscription is closed or the context is cancelled.
func (r *RedisAdapter) Subscribe(ctx context.Context) (<-chan domain.PendingOrder, error) {
	r.pubsub = r.client.Subscribe(ctx, orderChannel)

	// Wait for the subscription to be established before returning.
	if _, err := r.pubsub.Receive(ctx); err != nil {
		r.pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", orderChannel, err)
	}

	out := make(chan domain.PendingOrder)
	go func() {
		defer close(out)
		for msg := range r.pubsub.Channel() {
			var o domain.PendingOrder
			if err := json.Unmarshal([]byte(msg.Payload), &o); err != nil {
				log.Printf("redis: drop malformed order event: %v", err)
				continue
			}
			select {
			case out <- o:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Close unsubscribes; no events are delivered afterwards.
func (r *RedisAdapter) Close() error {
	if r.pubsub == nil {
		return nil
	}
	return r.pubsub.Close()
}

// PublishPending announces a newly inserted pending order to all subscribers.
// Used by whatever writes the source (storefront bot, seeder, tests).
func (r *RedisAdapter) PublishPending(ctx context.Context, o domain.PendingOrder) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal order event: %w", err)
	}
	return r.client.Publish(ctx, orderChannel, payload).Err()
}
