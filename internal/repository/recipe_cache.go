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

// RecipeCache holds recipe details (with ingredients) as JSON under recipe:<id>.
type RecipeCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRecipeCache(rdb *redis.Client, ttl time.Duration) *RecipeCache {
	return &RecipeCache{rdb: rdb, ttl: ttl}
}

func RecipeCacheKey(id int) string {
	return fmt.Sprintf("recipe:%d", id)
}

func (c *RecipeCache) Get(ctx context.Context, id int) (*entity.Recipe, error) {
	data, err := c.rdb.Get(ctx, RecipeCacheKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, err
	}

	var recipe entity.Recipe
	if err := json.Unmarshal(data, &recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

func (c *RecipeCache) Set(ctx context.Context, recipe *entity.Recipe) error {
	data, err := json.Marshal(recipe)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, RecipeCacheKey(recipe.ID), data, c.ttl).Err()
}

func (c *RecipeCache) Delete(ctx context.Context, id int) error {
	return c.rdb.Del(ctx, RecipeCacheKey(id)).Err()
}
