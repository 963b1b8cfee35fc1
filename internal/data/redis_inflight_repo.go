package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/core"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
)

const inflightKeyPrefix = "enrich:inflight:"

// InflightKey returns the Redis key guarding queued research for pair.
func InflightKey(pair model.ResearchPayload) string {
	return fmt.Sprintf("%s%d:%d", inflightKeyPrefix, pair.PersonID, pair.CompanyID)
}

// RedisInflightRepo implements core.InflightStore with Redis string keys.
type RedisInflightRepo struct {
	client redis.UniversalClient
}

// NewRedisInflightRepo creates a new RedisInflightRepo with the given Redis client.
func NewRedisInflightRepo(client redis.UniversalClient) *RedisInflightRepo {
	return &RedisInflightRepo{client: client}
}

// Acquire sets the key only if it does not exist yet, atomically with its TTL.
func (r *RedisInflightRepo) Acquire(ctx context.Context, pair model.ResearchPayload, value string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Second
	}
	// SETNX followed by EXPIRE is not atomic; SET NX with TTL is.
	status, err := r.client.SetArgs(ctx, InflightKey(pair), value, redis.SetArgs{Mode: "NX", TTL: ttl}).Result()
	if err != nil {
		// A failed NX condition comes back as a nil reply.
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis SET NX: %w", err)
	}
	return status == "OK", nil
}

// Get returns the stored value, or "" when the key is absent.
func (r *RedisInflightRepo) Get(ctx context.Context, pair model.ResearchPayload) (string, error) {
	v, err := r.client.Get(ctx, InflightKey(pair)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get: %w", err)
	}
	return v, nil
}

// Set overwrites the key and its TTL.
func (r *RedisInflightRepo) Set(ctx context.Context, pair model.ResearchPayload, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, InflightKey(pair), value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Release deletes the key. Missing keys are not an error.
func (r *RedisInflightRepo) Release(ctx context.Context, pair model.ResearchPayload) error {
	if err := r.client.Del(ctx, InflightKey(pair)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Keys lists every in-flight key with its stored value.
func (r *RedisInflightRepo) Keys(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string)
	iter := r.client.Scan(ctx, 0, inflightKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		v, err := r.client.Get(ctx, iter.Val()).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("redis get: %w", err)
		}
		out[iter.Val()] = v
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return out, nil
}

// ClearAll removes every in-flight key and returns how many were deleted.
func (r *RedisInflightRepo) ClearAll(ctx context.Context) (int64, error) {
	var deleted int64
	iter := r.client.Scan(ctx, 0, inflightKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		n, err := r.client.Del(ctx, iter.Val()).Result()
		if err != nil {
			return deleted, fmt.Errorf("redis del: %w", err)
		}
		deleted += n
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("redis scan: %w", err)
	}
	return deleted, nil
}

// Health pings the Redis server.
func (r *RedisInflightRepo) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

var _ core.InflightStore = (*RedisInflightRepo)(nil)
