// Package session keeps authenticated-session state in a key/value store.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophusers/internal/common"
	"github.com/redis/go-redis/v9"
)

// Store is a namespaced string key/value store. Get on a missing key
// returns common.ErrorNotFound.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Release(ctx context.Context, key string) error
}

// RedisStore keeps sessions in Redis under prefix. A positive ttl is
// applied to every Set.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisStore {
	if prefix == "" {
		prefix = common.DefaultSessionPrefix
	}
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.prefix+key).Result()
	if err == redis.Nil {
		return "", common.ErrorNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.prefix+key, value, s.ttl).Err()
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

// MemoryStore is a process-local Store. Entries do not expire.
type MemoryStore struct {
	mu     sync.RWMutex
	prefix string
	data   map[string]string
}

func NewMemoryStore(prefix string) *MemoryStore {
	if prefix == "" {
		prefix = common.DefaultSessionPrefix
	}
	return &MemoryStore{prefix: prefix, data: make(map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[s.prefix+key]
	if !ok {
		return "", common.ErrorNotFound
	}
	return v, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[s.prefix+key] = value
	return nil
}

func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, s.prefix+key)
	return nil
}
