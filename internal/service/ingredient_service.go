package service

import (
	"context"
	"errors"
	"fmt"
	"recipe-service/internal/entity"
	"recipe-service/internal/repository"
)

const (
	maxIngredientNameLen   = 200
	maxIngredientAmountLen = 100
)

type IngredientStore interface {
	GetIngredientByID(ctx context.Context, id int) (*entity.Ingredient, error)
	CreateIngredients(ctx context.Context, recipeID int, rows []entity.IngredientRow) ([]entity.Ingredient, error)
	UpdateIngredient(ctx context.Context, ingredient *entity.Ingredient) (*entity.Ingredient, error)
	DeleteIngredient(ctx context.Context, id int) error
}

// DraftStore keeps unsaved ingredient rows between redirects. Pop returns
// nil rows when nothing is stored.
type DraftStore interface {
	Save(ctx context.Context, userID int, rows []entity.IngredientRow) error
	Pop(ctx context.Context, userID int) ([]entity.IngredientRow, error)
}

// IngredientForm is what the form renderer needs to draw the entry page.
type IngredientForm struct {
	RecipeID     int                    `json:"recipe_id"`
	FormCount    int                    `json:"form_count"`
	MinFormCount int                    `json:"min_form_count"`
	MaxFormCount int                    `json:"max_form_count"`
	Rows         []entity.IngredientRow `json:"rows"`
	Messages     []string               `json:"messages"`
}

type IngredientService struct {
	ingredients IngredientStore
	recipes     *RecipeService
	formCounts  *FormCountService
	drafts      DraftStore
}

func NewIngredientService(ingredients IngredientStore, recipes *RecipeService, formCounts *FormCountService, drafts DraftStore) *IngredientService {
	return &IngredientService{
		ingredients: ingredients,
		recipes:     recipes,
		formCounts:  formCounts,
		drafts:      drafts,
	}
}

// NewIngredientForm builds the entry form for recipeID, restoring any draft
// the user left behind when they last changed the number of rows.
func (s *IngredientService) NewIngredientForm(ctx context.Context, actorID, recipeID int) (*IngredientForm, error) {
	if _, err := s.recipes.GetRecipeForAuthor(ctx, actorID, recipeID); err != nil {
		return nil, err
	}

	count, err := s.formCounts.GetCount(ctx, actorID)
	if err != nil {
		return nil, err
	}

	draft, err := s.drafts.Pop(ctx, actorID)
	if err != nil {
		// a lost draft only means the user retypes
		logger.Warn().Err(err).Msgf("Error restoring ingredient draft for user %d", actorID)
		draft = nil
	}

	rows := make([]entity.IngredientRow, count)
	copy(rows, draft)

	return &IngredientForm{
		RecipeID:     recipeID,
		FormCount:    count,
		MinFormCount: MinFormCount,
		MaxFormCount: MaxFormCount,
		Rows:         rows,
		Messages:     []string{},
	}, nil
}

// AddRow stashes the rows typed so far and asks for one more row.
func (s *IngredientService) AddRow(ctx context.Context, actorID, recipeID int, rows []entity.IngredientRow) (Adjustment, error) {
	return s.changeRows(ctx, actorID, recipeID, rows, 1)
}

// RemoveRow stashes the rows typed so far and asks for one row less.
func (s *IngredientService) RemoveRow(ctx context.Context, actorID, recipeID int, rows []entity.IngredientRow) (Adjustment, error) {
	return s.changeRows(ctx, actorID, recipeID, rows, -1)
}

// ResetRows goes back to the default number of rows. The draft is not kept.
func (s *IngredientService) ResetRows(ctx context.Context, actorID, recipeID int) error {
	if _, err := s.recipes.GetRecipeForAuthor(ctx, actorID, recipeID); err != nil {
		return err
	}
	return s.formCounts.ResetCount(ctx, actorID)
}

func (s *IngredientService) changeRows(ctx context.Context, actorID, recipeID int, rows []entity.IngredientRow, delta int) (Adjustment, error) {
	if _, err := s.recipes.GetRecipeForAuthor(ctx, actorID, recipeID); err != nil {
		return Adjustment{}, err
	}

	s.StashDraft(ctx, actorID, rows)
	return s.formCounts.AdjustCount(ctx, actorID, delta)
}

// StashDraft keeps the rows typed so far for the next NewIngredientForm.
// Failing to store them is logged and otherwise ignored.
func (s *IngredientService) StashDraft(ctx context.Context, actorID int, rows []entity.IngredientRow) {
	if err := s.drafts.Save(ctx, actorID, rows); err != nil {
		logger.Warn().Err(err).Msgf("Error stashing ingredient draft for user %d", actorID)
	}
}

// CreateIngredients validates and saves the submitted rows. Rows past the
// maximum form count are ignored and fully blank rows are skipped.
func (s *IngredientService) CreateIngredients(ctx context.Context, actorID, recipeID int, rows []entity.IngredientRow) ([]entity.Ingredient, error) {
	recipe, err := s.recipes.GetRecipeForAuthor(ctx, actorID, recipeID)
	if err != nil {
		return nil, err
	}

	if len(rows) > MaxFormCount {
		rows = rows[:MaxFormCount]
	}

	v := &ValidationError{}
	var valid []entity.IngredientRow
	for i, row := range rows {
		row = cleanRow(row)
		if row.Blank() {
			continue
		}
		checkRow(v, fmt.Sprintf("rows[%d].", i), row)
		valid = append(valid, row)
	}
	if err := v.orNil(); err != nil {
		return nil, err
	}
	if len(valid) == 0 {
		return nil, nil
	}

	created, err := s.ingredients.CreateIngredients(ctx, recipeID, valid)
	if err != nil {
		logger.Error().Err(err).Msgf("Error creating ingredients for recipe %d", recipeID)
		return nil, err
	}

	s.recipes.NotifyChanged(ctx, EventIngredientsAdded, recipe)
	return created, nil
}

func (s *IngredientService) UpdateIngredient(ctx context.Context, actorID, id int, row entity.IngredientRow) (*entity.Ingredient, error) {
	ingredient, recipe, err := s.getIngredientForAuthor(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	row = cleanRow(row)
	v := &ValidationError{}
	checkRow(v, "", row)
	if err := v.orNil(); err != nil {
		return nil, err
	}

	ingredient.Name = row.Name
	ingredient.Amount = row.Amount
	updated, err := s.ingredients.UpdateIngredient(ctx, ingredient)
	if err != nil {
		logger.Error().Err(err).Msgf("Error updating ingredient %d", id)
		return nil, err
	}

	s.recipes.NotifyChanged(ctx, EventRecipeUpdated, recipe)
	return updated, nil
}

// DeleteIngredient removes the ingredient and returns the id of its recipe.
func (s *IngredientService) DeleteIngredient(ctx context.Context, actorID, id int) (int, error) {
	_, recipe, err := s.getIngredientForAuthor(ctx, actorID, id)
	if err != nil {
		return 0, err
	}

	if err := s.ingredients.DeleteIngredient(ctx, id); err != nil {
		logger.Error().Err(err).Msgf("Error deleting ingredient %d", id)
		return 0, err
	}

	s.recipes.NotifyChanged(ctx, EventRecipeUpdated, recipe)
	return recipe.ID, nil
}

// getIngredientForAuthor checks ownership through the parent recipe.
func (s *IngredientService) getIngredientForAuthor(ctx context.Context, actorID, id int) (*entity.Ingredient, *entity.Recipe, error) {
	ingredient, err := s.ingredients.GetIngredientByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, ErrIngredientNotFound
		}
		logger.Error().Err(err).Msgf("Error getting ingredient by ID %d", id)
		return nil, nil, err
	}

	recipe, err := s.recipes.GetRecipeForAuthor(ctx, actorID, ingredient.RecipeID)
	if err != nil {
		return nil, nil, err
	}
	return ingredient, recipe, nil
}

func cleanRow(row entity.IngredientRow) entity.IngredientRow {
	return entity.IngredientRow{
		Name:   sanitizeText(row.Name),
		Amount: sanitizeText(row.Amount),
	}
}

func checkRow(v *ValidationError, prefix string, row entity.IngredientRow) {
	checkText(v, prefix+"name", row.Name, maxIngredientNameLen)
	checkText(v, prefix+"amount", row.Amount, maxIngredientAmountLen)
}
