package data

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/core"
)

// WorkerHeartbeatKey is refreshed by the running worker.
const WorkerHeartbeatKey = "enrich:worker:heartbeat"

// RedisHeartbeatRepo records worker liveness as an expiring Redis key.
type RedisHeartbeatRepo struct {
	client redis.UniversalClient
	key    string
	now    func() time.Time
}

// NewRedisHeartbeatRepo creates a heartbeat store using WorkerHeartbeatKey.
func NewRedisHeartbeatRepo(client redis.UniversalClient) *RedisHeartbeatRepo {
	return &RedisHeartbeatRepo{client: client, key: WorkerHeartbeatKey, now: time.Now}
}

// Beat stores the current time with ttl.
func (r *RedisHeartbeatRepo) Beat(ctx context.Context, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key, r.now().UTC().Format(time.RFC3339Nano), ttl).Err(); err != nil {
		return fmt.Errorf("redis heartbeat: %w", err)
	}
	return nil
}

// Alive reports whether a heartbeat is currently stored.
func (r *RedisHeartbeatRepo) Alive(ctx context.Context) (bool, error) {
	n, err := r.client.Exists(ctx, r.key).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

var _ core.WorkerHeartbeat = (*RedisHeartbeatRepo)(nil)
