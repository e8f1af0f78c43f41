package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/alexjoedt/jsonstore"
	"github.com/alexjoedt/jsonstore/api"
)

// ErrCacheMiss indicates the cache holds no entry for the blob.
var ErrCacheMiss = errors.New("server: cache miss")

// Cache is the read-through blob cache consulted in front of the store.
type Cache interface {
	GetBlob(ctx context.Context, key, filename string) (json.RawMessage, error)
	SetBlob(ctx context.Context, key, filename string, data json.RawMessage) error
	DeleteBlob(ctx context.Context, key, filename string) error
	Close() error
}

// NoOpCache implements Cache but caches nothing.
type NoOpCache struct{}

func (NoOpCache) GetBlob(ctx context.Context, key, filename string) (json.RawMessage, error) {
	return nil, ErrCacheMiss
}

func (NoOpCache) SetBlob(ctx context.Context, key, filename string, data json.RawMessage) error {
	return nil
}

func (NoOpCache) DeleteBlob(ctx context.Context, key, filename string) error {
	return nil
}

func (NoOpCache) Close() error { return nil }

// RedisCache implements Cache using Redis with a per-entry TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis at address and verifies the connection
// with a ping before returning.
func NewRedisCache(ctx context.Context, address string, ttlSeconds int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        address,
		DialTimeout: 2 * time.Second,
		ReadTimeout: 2 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &RedisCache{
		client: client,
		ttl:    time.Duration(ttlSeconds) * time.Second,
	}, nil
}

// cacheKey builds the Redis key from the sanitized blob identity, so every
// raw spelling of the same blob shares one cache entry.
func cacheKey(key, filename string) string {
	return fmt.Sprintf("blob:%s/%s", jsonstore.SanitizeKey(key), jsonstore.SanitizeFilename(filename))
}

func (c *RedisCache) GetBlob(ctx context.Context, key, filename string) (json.RawMessage, error) {
	data, err := c.client.Get(ctx, cacheKey(key, filename)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}
	return json.RawMessage(data), nil
}

func (c *RedisCache) SetBlob(ctx context.Context, key, filename string, data json.RawMessage) error {
	return c.client.Set(ctx, cacheKey(key, filename), []byte(data), c.ttl).Err()
}

func (c *RedisCache) DeleteBlob(ctx context.Context, key, filename string) error {
	return c.client.Del(ctx, cacheKey(key, filename)).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// CachedStore composes a Cache in front of an api.Store. Gets are
// read-through, puts write through, lists always hit the store so that
// out-of-band files stay visible. Cache failures degrade to the underlying
// store and are logged, never returned.
//
// Note: files edited out-of-band can be masked for up to the TTL while the
// cache holds an entry for them.
type CachedStore struct {
	store api.Store
	cache Cache
	log   *logrus.Logger
}

func NewCachedStore(store api.Store, cache Cache, log *logrus.Logger) *CachedStore {
	return &CachedStore{store: store, cache: cache, log: log}
}

func (cs *CachedStore) Put(ctx context.Context, key, filename string, data any) error {
	if err := cs.store.Put(ctx, key, filename, data); err != nil {
		return err
	}

	// Same serialization the store just performed, so the cached bytes
	// match the file's bytes.
	payload, err := json.Marshal(data)
	if err == nil {
		err = cs.cache.SetBlob(ctx, key, filename, payload)
	}
	if err != nil {
		cs.log.WithError(err).Warn("cache write-through failed")
		if err := cs.cache.DeleteBlob(ctx, key, filename); err != nil {
			cs.log.WithError(err).Warn("cache invalidation failed")
		}
	}

	return nil
}

func (cs *CachedStore) Get(ctx context.Context, key, filename string) (json.RawMessage, error) {
	data, err := cs.cache.GetBlob(ctx, key, filename)
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		cs.log.WithError(err).Warn("cache read failed")
	}

	data, err = cs.store.Get(ctx, key, filename)
	if err != nil {
		return nil, err
	}

	if err := cs.cache.SetBlob(ctx, key, filename, data); err != nil {
		cs.log.WithError(err).Warn("cache fill failed")
	}

	return data, nil
}

func (cs *CachedStore) List(ctx context.Context, key string) ([]string, error) {
	return cs.store.List(ctx, key)
}
