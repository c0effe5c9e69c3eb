package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/internal/session"
	"github.com/rajtharani77/YouTube-AI-Assistant---Telegram-Bot/models"
)

const keyPrefix = "session:"

// Backend stores one JSON document per user in Redis. Expiry rides on the
// key's native TTL, so Redis drops stale sessions on its own.
type Backend struct {
	client *redis.Client
}

// Connect dials Redis and verifies the connection with a ping.
func Connect(ctx context.Context, addr, password string, db int) (*Backend, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Backend{client: client}, nil
}

// NewWithClient wraps an existing client, mainly for tests.
func NewWithClient(client *redis.Client) *Backend {
	return &Backend{client: client}
}

var _ session.Backend = (*Backend)(nil)

func (b *Backend) Save(ctx context.Context, sess models.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		// Already expired; nothing durable to keep.
		return b.client.Del(ctx, keyPrefix+sess.UserID).Err()
	}
	return b.client.Set(ctx, keyPrefix+sess.UserID, data, ttl).Err()
}

func (b *Backend) Load(ctx context.Context, userID string) (models.Session, bool, error) {
	val, err := b.client.Get(ctx, keyPrefix+userID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Session{}, false, nil
		}
		return models.Session{}, false, err
	}
	var sess models.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return models.Session{}, false, fmt.Errorf("decode session %s: %w", userID, err)
	}
	return sess, true, nil
}

func (b *Backend) Delete(ctx context.Context, userID string) error {
	return b.client.Del(ctx, keyPrefix+userID).Err()
}

// SweepExpired is a no-op for Redis: keys carry their own TTL and are removed
// by the server when they lapse.
func (b *Backend) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	return 0, nil
}

// Close releases the underlying client.
func (b *Backend) Close() error {
	return b.client.Close()
}
