// Package routecache memoizes itinerary results and dynamic-walking
// lookups in Redis: a singleton client plus key-hashing and get/set
// helpers shared by every cacheable computation.
package routecache

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/transitwise/itinerary/internal/config"
	"github.com/redis/go-redis/v9"
)

// Cache wraps a Redis client with the key schemes this package uses.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects a Redis client per cfg. It pings once to fail fast.
func New(ctx context.Context, cfg config.Redis) (*Cache, error) {
	opts := &redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	}
	if cfg.Password != "" {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("routecache: connect to redis: %w", err)
	}

	return &Cache{client: client, ttl: cfg.TTL}, nil
}

// Close closes the underlying Redis client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// WalkKey hashes a rounded coordinate pair into a short, deterministic
// cache key for the WalkingDynamic agency.
func WalkKey(fromLat, fromLng, toLat, toLng float64) string {
	data := fmt.Sprintf("%.5f,%.5f,%.5f,%.5f", fromLat, fromLng, toLat, toLng)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("walk:%x", hash[:8])
}

// GetWalkSeconds returns a previously-cached dynamic-walking duration,
// or (0, false) on a cache miss.
func (c *Cache) GetWalkSeconds(ctx context.Context, key string) (float64, bool) {
	val, err := c.client.Get(ctx, key).Float64()
	if err != nil {
		return 0, false
	}
	return val, true
}

// SetWalkSeconds caches a dynamic-walking duration under key.
func (c *Cache) SetWalkSeconds(ctx context.Context, key string, seconds float64) {
	c.client.Set(ctx, key, seconds, c.ttl)
}

// ItineraryKey hashes a solver request's shape into a cache key for its
// result. variant folds in anything besides origin/destination/anchor/
// depart that changes the result, such as the walking-cap mode, so that
// two requests that differ only in walking cap don't collide.
func ItineraryKey(origin, destination string, anchor time.Time, depart bool, variant string) string {
	data := fmt.Sprintf("%s|%s|%s|%v|%s", origin, destination, anchor.Format(time.RFC3339), depart, variant)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("itinerary:%x", hash[:8])
}

// GetItinerary retrieves a cached result decoded into dst.
func (c *Cache) GetItinerary(ctx context.Context, key string, dst interface{}) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

// SetItinerary caches v under key.
func (c *Cache) SetItinerary(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("routecache: marshal itinerary: %w", err)
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

// HealthCheck pings Redis.
func (c *Cache) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("routecache: ping failed: %w", err)
	}
	return nil
}
