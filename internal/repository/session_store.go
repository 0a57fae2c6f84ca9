package repository

import (
	"context"
	"errors"
	"fmt"
	"github.com/go-redis/redis/v8"
	"time"
)

type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func sessionKey(userID int) string {
	return fmt.Sprintf("session:%d", userID)
}

func (s *SessionStore) Save(ctx context.Context, userID int, token string, ttl time.Duration) error {
	return s.rdb.Set(ctx, sessionKey(userID), token, ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, userID int) (string, error) {
	token, err := s.rdb.Get(ctx, sessionKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCacheMiss
		}
		return "", err
	}
	return token, nil
}

func (s *SessionStore) Delete(ctx context.Context, userID int) error {
	return s.rdb.Del(ctx, sessionKey(userID)).Err()
}
