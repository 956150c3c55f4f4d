// Package cache provides a Redis read-through cache for daily reports.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"reportdesk/api/internal/report"
)

const defaultTTL = 10 * time.Minute

// ReportCache keeps recently read documents in Redis so repeated polling
// by open browser tabs does not hit Postgres. Entries are invalidated on
// every merge; the TTL only bounds staleness when invalidation is missed.
type ReportCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewReportCache connects to Redis and verifies the connection. A ttl of
// zero or less falls back to the default.
func NewReportCache(redisURL string, ttl time.Duration) (*ReportCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	cache := NewReportCacheWithClient(client)
	if ttl > 0 {
		cache.ttl = ttl
	}
	return cache, nil
}

// NewReportCacheWithClient creates a cache from an existing Redis client.
func NewReportCacheWithClient(client *redis.Client) *ReportCache {
	return &ReportCache{
		client: client,
		prefix: "report:",
		ttl:    defaultTTL,
	}
}

func (c *ReportCache) key(dateKey string) string {
	return c.prefix + dateKey
}

// Get returns the cached document for a date key, or nil on a miss.
func (c *ReportCache) Get(ctx context.Context, dateKey string) (*report.Document, error) {
	raw, err := c.client.Get(ctx, c.key(dateKey)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cached report: %w", err)
	}

	var doc report.Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode cached report: %w", err)
	}
	return &doc, nil
}

// Set stores a document under its date key with the cache TTL.
func (c *ReportCache) Set(ctx context.Context, dateKey string, doc *report.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode report for cache: %w", err)
	}
	if err := c.client.Set(ctx, c.key(dateKey), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache report: %w", err)
	}
	return nil
}

// Invalidate drops the cached document for a date key.
func (c *ReportCache) Invalidate(ctx context.Context, dateKey string) error {
	if err := c.client.Del(ctx, c.key(dateKey)).Err(); err != nil {
		return fmt.Errorf("invalidate cached report: %w", err)
	}
	return nil
}

// Ping checks if Redis is reachable.
func (c *ReportCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *ReportCache) Close() error {
	return c.client.Close()
}
