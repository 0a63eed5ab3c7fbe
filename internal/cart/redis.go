package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Carts older than this are abandoned and can expire.
const slotTTL = 90 * 24 * time.Hour

func NewRedisStorage(client *redis.Client, slot string) *RedisStorage {
	return &RedisStorage{
		client: client,
		slot:   slot,
	}
}

// RedisStorage keeps one cart per slot under a single key and signals
// mutations over a per-slot pub/sub channel.
type RedisStorage struct {
	client *redis.Client
	slot   string
}

func (r *RedisStorage) Read(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, slotKey(r.slot)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrEmptySlot
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (r *RedisStorage) Write(ctx context.Context, payload []byte) error {
	if err := r.client.Set(ctx, slotKey(r.slot), payload, slotTTL).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Publish(ctx context.Context, payload []byte) error {
	if err := r.client.Publish(ctx, syncChannel(r.slot), payload).Err(); err != nil {
		return fmt.Errorf("redis publish failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Updates(ctx context.Context) (<-chan []byte, func(), error) {
	sub := r.client.Subscribe(ctx, syncChannel(r.slot))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("redis subscribe failed: %w", err)
	}

	out := make(chan []byte)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			select {
			case out <- []byte(msg.Payload):
			case <-ctx.Done():
				return
			}
		}
	}()

	stop := func() { _ = sub.Close() }
	return out, stop, nil
}

func slotKey(slot string) string {
	return fmt.Sprintf("cart:%s", slot)
}

func syncChannel(slot string) string {
	return fmt.Sprintf("cartsync:%s", slot)
}
