package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/dental-supply/internal/core/domain"
)

const (
	scanLockKey  = "scan:lock"
	lastCycleKey = "scan:last"
)

var releaseLockScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end

return 0
`)

type RedisAdapter struct {
	client  *redis.Client
	lockTTL time.Duration
}

func NewRedisAdapter(client *redis.Client, lockTTL time.Duration) *RedisAdapter {
	return &RedisAdapter{client: client, lockTTL: lockTTL}
}

// AcquireScanLock sets the lock key with a fresh token. The TTL frees the
// lock if the holder dies mid-cycle.
func (r *RedisAdapter) AcquireScanLock(ctx context.Context) (string, bool, error) {
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, scanLockKey, token, r.lockTTL).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// ReleaseScanLock deletes the lock only while it still carries token, so a
// holder whose TTL lapsed cannot free the next holder's lock.
func (r *RedisAdapter) ReleaseScanLock(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	_, err := releaseLockScript.Run(ctx, r.client, []string{scanLockKey}, token).Int()
	return err
}

func (r *RedisAdapter) SaveCycle(ctx context.Context, summary domain.CycleSummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode cycle: %w", err)
	}
	return r.client.Set(ctx, lastCycleKey, data, 0).Err()
}

func (r *RedisAdapter) LastCycle(ctx context.Context) (*domain.CycleSummary, error) {
	data, err := r.client.Get(ctx, lastCycleKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var summary domain.CycleSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("decode cycle: %w", err)
	}
	return &summary, nil
}
