package repository

import (
	"context"
	"errors"
	"github.com/go-redis/redis/v8"
)

// CounterStore is a plain key/value view over redis. Values never expire.
type CounterStore struct {
	rdb *redis.Client
}

func NewCounterStore(rdb *redis.Client) *CounterStore {
	return &CounterStore{rdb: rdb}
}

// Get returns ErrCacheMiss when the key does not exist.
func (s *CounterStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCacheMiss
		}
		return "", err
	}
	return val, nil
}

func (s *CounterStore) Set(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, key, value, 0).Err()
}
