package backend

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/kintree/pkg/family"
)

// RedisBackend stores the JSON record array under a single key.
type RedisBackend struct {
	client *redis.Client
	key    string
}

// NewRedisBackend connects to the Redis server at addr and verifies the
// connection with a PING.
func NewRedisBackend(ctx context.Context, addr, key string) (*RedisBackend, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return NewRedisBackendWithClient(client, key), nil
}

// NewRedisBackendWithClient wraps an existing client.
func NewRedisBackendWithClient(client *redis.Client, key string) *RedisBackend {
	return &RedisBackend{client: client, key: key}
}

// Load reads the key. A missing key yields an empty collection.
func (b *RedisBackend) Load(ctx context.Context) ([]family.Person, error) {
	data, err := b.client.Get(ctx, b.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", b.key, err)
	}
	people, err := family.UnmarshalPeople(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", b.key, err)
	}
	return people, nil
}

// Save overwrites the key with people. The key never expires.
func (b *RedisBackend) Save(ctx context.Context, people []family.Person) error {
	data, err := family.MarshalPeople(people)
	if err != nil {
		return err
	}
	if err := b.client.Set(ctx, b.key, data, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", b.key, err)
	}
	return nil
}

// Close closes the client.
func (b *RedisBackend) Close() error { return b.client.Close() }

var _ family.Backend = (*RedisBackend)(nil)
