package collect

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"swellforecaster/swell"
)

// FetchCache is a Redis-backed response cache. Chart products rotate on fixed
// schedules, so re-collections inside the TTL window can reuse the previous
// body instead of hitting the upstream again.
type FetchCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFetchCache connects to Redis and verifies connectivity.
func NewFetchCache(addr string, ttl time.Duration) (*FetchCache, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return &FetchCache{client: client, ttl: ttl}, nil
}

// Get returns a cached response body for a URL, if present.
func (f *FetchCache) Get(ctx context.Context, url string) ([]byte, bool) {
	data, err := f.client.Get(ctx, f.key(url)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Printf("Warning: cache get failed for %s: %v", url, err)
		return nil, false
	}
	return data, true
}

// Put stores a response body. Failures are logged and ignored; the cache is
// purely an optimization.
func (f *FetchCache) Put(ctx context.Context, url string, data []byte) {
	if err := f.client.Set(ctx, f.key(url), data, f.ttl).Err(); err != nil {
		log.Printf("Warning: cache put failed for %s: %v", url, err)
	}
}

// Close closes the underlying Redis client.
func (f *FetchCache) Close() error {
	return f.client.Close()
}

func (f *FetchCache) key(url string) string {
	return "fetch:" + swell.FingerprintURL(url)
}
