package service

import (
	"context"
	"errors"
	"recipe-service/internal/entity"
	"recipe-service/internal/repository"
	"time"
)

const (
	maxRecipeNameLen  = 50
	maxRecipeImageLen = 255
)

type RecipeStore interface {
	GetRecipeByID(ctx context.Context, id int) (*entity.Recipe, error)
	GetRecipes(ctx context.Context) ([]*entity.Recipe, error)
	GetRecipesByUser(ctx context.Context, userID int) ([]*entity.Recipe, error)
	CreateRecipe(ctx context.Context, recipe *entity.Recipe) (*entity.Recipe, error)
	UpdateRecipe(ctx context.Context, recipe *entity.Recipe) (*entity.Recipe, error)
	DeleteRecipe(ctx context.Context, id int) error
}

// RecipeCache must return repository.ErrCacheMiss for an absent recipe.
type RecipeCache interface {
	Get(ctx context.Context, id int) (*entity.Recipe, error)
	Set(ctx context.Context, recipe *entity.Recipe) error
	Delete(ctx context.Context, id int) error
}

type RecipeInput struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
	Image       string `json:"image" form:"image"`
}

func (in RecipeInput) clean() (RecipeInput, error) {
	out := RecipeInput{
		Name:        sanitizeText(in.Name),
		Description: sanitizeText(in.Description),
		Image:       sanitizeText(in.Image),
	}

	v := &ValidationError{}
	checkText(v, "name", out.Name, maxRecipeNameLen)
	checkText(v, "description", out.Description, 0)
	if len(out.Image) > maxRecipeImageLen {
		v.add("image", "path too long")
	}
	return out, v.orNil()
}

type RecipeService struct {
	recipes RecipeStore
	cache   RecipeCache
	events  EventPublisher
	now     func() time.Time
}

func NewRecipeService(recipes RecipeStore, cache RecipeCache, events EventPublisher) *RecipeService {
	return &RecipeService{
		recipes: recipes,
		cache:   cache,
		events:  events,
		now:     time.Now,
	}
}

func (s *RecipeService) ListRecipes(ctx context.Context) ([]*entity.Recipe, error) {
	recipes, err := s.recipes.GetRecipes(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Error listing recipes")
		return nil, err
	}
	return recipes, nil
}

func (s *RecipeService) ListRecipesByUser(ctx context.Context, userID int) ([]*entity.Recipe, error) {
	recipes, err := s.recipes.GetRecipesByUser(ctx, userID)
	if err != nil {
		logger.Error().Err(err).Msgf("Error listing recipes of user %d", userID)
		return nil, err
	}
	return recipes, nil
}

// GetRecipe reads through the cache. Cache failures only cost a database trip.
func (s *RecipeService) GetRecipe(ctx context.Context, id int) (*entity.Recipe, error) {
	cached, err := s.cache.Get(ctx, id)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, repository.ErrCacheMiss) {
		logger.Warn().Err(err).Msgf("Error reading recipe %d from cache", id)
	}

	recipe, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, recipe); err != nil {
		logger.Warn().Err(err).Msgf("Error caching recipe %d", id)
	}
	return recipe, nil
}

// GetRecipeForAuthor loads a recipe from the database and fails with
// ErrForbidden unless actorID owns it.
func (s *RecipeService) GetRecipeForAuthor(ctx context.Context, actorID, id int) (*entity.Recipe, error) {
	recipe, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !IsAuthor(recipe, actorID) {
		logger.Warn().Msgf("User %d is not the author of recipe %d", actorID, id)
		return nil, ErrForbidden
	}
	return recipe, nil
}

func (s *RecipeService) CreateRecipe(ctx context.Context, actorID int, input RecipeInput) (*entity.Recipe, error) {
	input, err := input.clean()
	if err != nil {
		return nil, err
	}

	recipe := &entity.Recipe{
		UserID:      actorID,
		Name:        input.Name,
		Description: input.Description,
		Image:       input.Image,
		PostedAt:    s.now().UTC(),
	}

	created, err := s.recipes.CreateRecipe(ctx, recipe)
	if err != nil {
		logger.Error().Err(err).Msg("Error creating recipe")
		return nil, err
	}

	s.publish(ctx, EventRecipeCreated, created)
	return created, nil
}

func (s *RecipeService) UpdateRecipe(ctx context.Context, actorID, id int, input RecipeInput) (*entity.Recipe, error) {
	recipe, err := s.GetRecipeForAuthor(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	input, err = input.clean()
	if err != nil {
		return nil, err
	}

	recipe.Name = input.Name
	recipe.Description = input.Description
	recipe.Image = input.Image

	updated, err := s.recipes.UpdateRecipe(ctx, recipe)
	if err != nil {
		logger.Error().Err(err).Msgf("Error updating recipe %d", id)
		return nil, err
	}

	s.NotifyChanged(ctx, EventRecipeUpdated, updated)
	return updated, nil
}

func (s *RecipeService) DeleteRecipe(ctx context.Context, actorID, id int) error {
	recipe, err := s.GetRecipeForAuthor(ctx, actorID, id)
	if err != nil {
		return err
	}

	if err := s.recipes.DeleteRecipe(ctx, id); err != nil {
		logger.Error().Err(err).Msgf("Error deleting recipe %d", id)
		return err
	}

	s.NotifyChanged(ctx, EventRecipeDeleted, recipe)
	return nil
}

// EvictRecipe drops the cached copy of a recipe.
func (s *RecipeService) EvictRecipe(ctx context.Context, id int) error {
	err := s.cache.Delete(ctx, id)
	if err != nil {
		logger.Error().Err(err).Msgf("Error evicting recipe %d from cache", id)
	}
	return err
}

// NotifyChanged evicts the local cache entry and tells the other instances.
func (s *RecipeService) NotifyChanged(ctx context.Context, event string, recipe *entity.Recipe) {
	_ = s.EvictRecipe(ctx, recipe.ID)
	s.publish(ctx, event, recipe)
}

// publish is best effort: the database write has already happened.
func (s *RecipeService) publish(ctx context.Context, event string, recipe *entity.Recipe) {
	if err := s.events.PublishRecipeEvent(ctx, event, recipe); err != nil {
		logger.Error().Err(err).Msgf("Error publishing %s event for recipe %d", event, recipe.ID)
	}
}

func (s *RecipeService) load(ctx context.Context, id int) (*entity.Recipe, error) {
	recipe, err := s.recipes.GetRecipeByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecipeNotFound
		}
		logger.Error().Err(err).Msgf("Error getting recipe by ID %d", id)
		return nil, err
	}
	return recipe, nil
}
