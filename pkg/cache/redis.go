package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/grundschule/timetabler-core/pkg/config"
)

// NewRedis returns a configured Redis client, the same dial-then-ping
// constructor shape as the teacher's cache package.
func NewRedis(cfg config.CacheConfig) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// SolveResultCache memoizes a solve outcome under the Domain Snapshot hash
// plus the solve configuration, so that re-running Generate/Optimize with an
// unchanged input and an unchanged config reuses a prior result instead of
// re-invoking the backend (spec.md §9, "Snapshot hash" glossary entry).
type SolveResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSolveResultCache wraps a Redis client with the module's key scheme.
func NewSolveResultCache(client *redis.Client, ttl time.Duration) *SolveResultCache {
	return &SolveResultCache{client: client, ttl: ttl}
}

func cacheKey(snapshotHash string, cfgHash string) string {
	return fmt.Sprintf("timetabler:solve:%s:%s", snapshotHash, cfgHash)
}

// Get looks up a previously cached result. ok is false on a cache miss or
// when the cache is disabled (client == nil).
func (c *SolveResultCache) Get(ctx context.Context, snapshotHash, cfgHash string, out any) (ok bool, err error) {
	if c == nil || c.client == nil {
		return false, nil
	}
	raw, err := c.client.Get(ctx, cacheKey(snapshotHash, cfgHash)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

// Set stores a solve result under the snapshot+config key, expiring after
// the configured TTL. A disabled cache is a no-op.
func (c *SolveResultCache) Set(ctx context.Context, snapshotHash, cfgHash string, value any) error {
	if c == nil || c.client == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(snapshotHash, cfgHash), raw, c.ttl).Err()
}
