package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/go-redis/redis/v8"
	"recipe-service/internal/entity"
	"time"
)

// DraftStore keeps the ingredient rows a user typed before asking for more
// or fewer rows, so they survive the redirect.
type DraftStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewDraftStore(rdb *redis.Client, ttl time.Duration) *DraftStore {
	return &DraftStore{rdb: rdb, ttl: ttl}
}

func draftKey(userID int) string {
	return fmt.Sprintf("form_data_%d", userID)
}

func (s *DraftStore) Save(ctx context.Context, userID int, rows []entity.IngredientRow) error {
	data, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, draftKey(userID), data, s.ttl).Err()
}

// Pop returns and removes the stored draft. A missing draft yields nil rows
// and no error.
func (s *DraftStore) Pop(ctx context.Context, userID int) ([]entity.IngredientRow, error) {
	data, err := s.rdb.GetDel(ctx, draftKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var rows []entity.IngredientRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode draft for user %d: %w", userID, err)
	}
	return rows, nil
}
