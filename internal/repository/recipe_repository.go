package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"recipe-service/internal/entity"
)

type RecipeRepository struct {
	db *sql.DB
}

func NewRecipeRepository(db *sql.DB) *RecipeRepository {
	return &RecipeRepository{db}
}

const recipeColumns = `id, user_id, name, description, image, posted_at`

func scanRecipe(row interface{ Scan(...interface{}) error }) (*entity.Recipe, error) {
	recipe := &entity.Recipe{}
	var image sql.NullString
	err := row.Scan(&recipe.ID, &recipe.UserID, &recipe.Name, &recipe.Description, &image, &recipe.PostedAt)
	if err != nil {
		return nil, err
	}
	recipe.Image = image.String
	return recipe, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// GetRecipeByID loads the recipe together with its ingredients.
func (r *RecipeRepository) GetRecipeByID(ctx context.Context, id int) (*entity.Recipe, error) {
	recipeQuery := `SELECT ` + recipeColumns + ` FROM recipes WHERE id = ?`
	ingredientQuery := `SELECT id, recipe_id, name, amount FROM ingredients WHERE recipe_id = ? ORDER BY id`

	recipe, err := scanRecipe(r.db.QueryRowContext(ctx, recipeQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("recipe %d: %w", id, ErrNotFound)
		}
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, ingredientQuery, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		ingredient := entity.Ingredient{}
		err := rows.Scan(&ingredient.ID, &ingredient.RecipeID, &ingredient.Name, &ingredient.Amount)
		if err != nil {
			return nil, err
		}
		recipe.Ingredients = append(recipe.Ingredients, ingredient)
	}

	return recipe, rows.Err()
}

func (r *RecipeRepository) GetRecipes(ctx context.Context) ([]*entity.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes ORDER BY id`
	return r.queryRecipes(ctx, query)
}

func (r *RecipeRepository) GetRecipesByUser(ctx context.Context, userID int) ([]*entity.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes WHERE user_id = ? ORDER BY id`
	return r.queryRecipes(ctx, query, userID)
}

func (r *RecipeRepository) queryRecipes(ctx context.Context, query string, args ...interface{}) ([]*entity.Recipe, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipes []*entity.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, recipe)
	}

	return recipes, rows.Err()
}

func (r *RecipeRepository) CreateRecipe(ctx context.Context, recipe *entity.Recipe) (*entity.Recipe, error) {
	query := `INSERT INTO recipes (user_id, name, description, image, posted_at) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, recipe.UserID, recipe.Name, recipe.Description, nullString(recipe.Image), recipe.PostedAt)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	recipe.ID = int(id)
	return recipe, nil
}

func (r *RecipeRepository) UpdateRecipe(ctx context.Context, recipe *entity.Recipe) (*entity.Recipe, error) {
	query := `UPDATE recipes SET name = ?, description = ?, image = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, recipe.Name, recipe.Description, nullString(recipe.Image), recipe.ID)
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

func (r *RecipeRepository) DeleteRecipe(ctx context.Context, id int) error {
	query := `DELETE FROM recipes WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
