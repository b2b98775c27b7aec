// Package persistence stores inbox session snapshots between runs.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/calmbox/internal/inbox/domain"
	"github.com/redis/go-redis/v9"
)

// SnapshotValueMaxSize is the largest snapshot accepted, in bytes.
const SnapshotValueMaxSize = 4 * 1024 * 1024

// RedisSnapshotRepository keeps snapshots under calmbox:user:{user_id}:inbox
// with a TTL.
type RedisSnapshotRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSnapshotRepository creates a Redis-backed repository. A ttl of 0
// stores without expiration.
func NewRedisSnapshotRepository(client *redis.Client, ttl time.Duration) *RedisSnapshotRepository {
	return &RedisSnapshotRepository{client: client, ttl: ttl}
}

func snapshotKey(userID string) string {
	return fmt.Sprintf("calmbox:user:%s:inbox", userID)
}

// Save implements domain.SnapshotRepository.
func (r *RedisSnapshotRepository) Save(ctx context.Context, snapshot domain.Snapshot) error {
	value, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, snapshotKey(snapshot.UserID), value, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save inbox snapshot: %w", err)
	}
	return nil
}

// Load implements domain.SnapshotRepository.
func (r *RedisSnapshotRepository) Load(ctx context.Context, userID string) (*domain.Snapshot, error) {
	val, err := r.client.Get(ctx, snapshotKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load inbox snapshot: %w", err)
	}
	return decodeSnapshot(val)
}

// Delete implements domain.SnapshotRepository.
func (r *RedisSnapshotRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, snapshotKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete inbox snapshot: %w", err)
	}
	return nil
}

// Ping checks the Redis connection.
func (r *RedisSnapshotRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func encodeSnapshot(snapshot domain.Snapshot) ([]byte, error) {
	if snapshot.UserID == "" {
		return nil, fmt.Errorf("snapshot user id is required")
	}
	if snapshot.SavedAt.IsZero() {
		snapshot.SavedAt = time.Now().UTC()
	}
	if snapshot.Emails == nil {
		snapshot.Emails = []domain.Email{}
	}

	value, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to encode inbox snapshot: %w", err)
	}
	if len(value) > SnapshotValueMaxSize {
		return nil, fmt.Errorf("inbox snapshot is %d bytes, limit is %d", len(value), SnapshotValueMaxSize)
	}
	return value, nil
}

func decodeSnapshot(value []byte) (*domain.Snapshot, error) {
	var snapshot domain.Snapshot
	if err := json.Unmarshal(value, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode inbox snapshot: %w", err)
	}
	return &snapshot, nil
}
