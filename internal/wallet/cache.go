package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const snapshotKeyPrefix = "wallet:snapshot:v1:"

// SnapshotCache persists the latest projection per user. The cache is fully
// derivable from the ledger; implementations may drop data at any time.
type SnapshotCache interface {
	Put(ctx context.Context, snapshot Snapshot) error
	Get(ctx context.Context, userID string) (Snapshot, bool, error)
	Delete(ctx context.Context, userID string) error
}

// RedisCache stores snapshots as JSON blobs in Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache builds a Redis-backed snapshot cache. A zero ttl keeps
// snapshots until the next projection overwrites them.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) Put(ctx context.Context, snapshot Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, snapshotKeyPrefix+snapshot.UserID, payload, c.ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context, userID string) (Snapshot, bool, error) {
	raw, err := c.client.Get(ctx, snapshotKeyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, err
	}
	var snapshot Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		// A corrupt blob is treated as a miss; the projector rebuilds it.
		return Snapshot{}, false, nil
	}
	return snapshot, true, nil
}

func (c *RedisCache) Delete(ctx context.Context, userID string) error {
	return c.client.Del(ctx, snapshotKeyPrefix+userID).Err()
}

type memoryCache struct {
	mu        sync.RWMutex
	snapshots map[string]Snapshot
}

// NewMemoryCache constructs an in-memory snapshot cache for tests and dev mode.
func NewMemoryCache() SnapshotCache {
	return &memoryCache{snapshots: make(map[string]Snapshot)}
}

func (c *memoryCache) Put(_ context.Context, snapshot Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots[snapshot.UserID] = snapshot
	return nil
}

func (c *memoryCache) Get(_ context.Context, userID string) (Snapshot, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snapshot, ok := c.snapshots[userID]
	return snapshot, ok, nil
}

func (c *memoryCache) Delete(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.snapshots, userID)
	return nil
}
