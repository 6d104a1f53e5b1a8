// Package cache provides a Redis day-level cache for feed payloads so a
// re-run within the TTL window does not hit the upstream APIs again.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"mlb_edge/pipeline/internal/metrics"
	"mlb_edge/pipeline/internal/models"
)

// Cache wraps the Redis client. A nil *Cache is valid and disables caching.
type Cache struct {
	client *redis.Client
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, addr, password string, db int) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	log.Info().Str("addr", addr).Msg("Connected to Redis")
	return &Cache{client: client}, nil
}

// Close closes the Redis connection.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}

func dayKey(source string, date time.Time) string {
	return fmt.Sprintf("feed:%s:%s", source, date.Format(models.DateLayout))
}

// GetDay returns the cached records for a source and day. The second return
// is false on a miss; cache errors degrade to a miss.
func (c *Cache) GetDay(ctx context.Context, source string, date time.Time) ([]models.GameRecord, bool) {
	if c == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, dayKey(source, date)).Bytes()
	if err == redis.Nil {
		metrics.RecordCacheMiss()
		return nil, false
	}
	if err != nil {
		log.Warn().Err(err).Str("source", source).Msg("Cache read failed, fetching fresh")
		metrics.RecordCacheMiss()
		return nil, false
	}

	var recs []models.GameRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		log.Warn().Err(err).Str("source", source).Msg("Corrupt cache entry, fetching fresh")
		metrics.RecordCacheMiss()
		return nil, false
	}

	metrics.RecordCacheHit()
	return recs, true
}

// SetDay caches a source's records for a day. Failures are logged only; the
// pipeline never depends on the cache.
func (c *Cache) SetDay(ctx context.Context, source string, date time.Time, recs []models.GameRecord, ttl time.Duration) {
	if c == nil {
		return
	}

	data, err := json.Marshal(recs)
	if err != nil {
		log.Warn().Err(err).Str("source", source).Msg("Failed to marshal cache entry")
		return
	}

	if err := c.client.Set(ctx, dayKey(source, date), data, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("source", source).Msg("Cache write failed")
	}
}
