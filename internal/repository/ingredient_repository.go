package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"recipe-service/internal/entity"
)

type IngredientRepository struct {
	db *sql.DB
}

func NewIngredientRepository(db *sql.DB) *IngredientRepository {
	return &IngredientRepository{db}
}

func (r *IngredientRepository) GetIngredientByID(ctx context.Context, id int) (*entity.Ingredient, error) {
	query := `SELECT id, recipe_id, name, amount FROM ingredients WHERE id = ?`

	ingredient := &entity.Ingredient{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&ingredient.ID, &ingredient.RecipeID, &ingredient.Name, &ingredient.Amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("ingredient %d: %w", id, ErrNotFound)
		}
		return nil, err
	}

	return ingredient, nil
}

// CreateIngredients inserts all rows for one recipe in a single transaction.
// Each row reads back its own id, since auto-increment values of a multi-row
// insert are not guaranteed to be consecutive.
func (r *IngredientRepository) CreateIngredients(ctx context.Context, recipeID int, rows []entity.IngredientRow) ([]entity.Ingredient, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	query := `INSERT INTO ingredients (recipe_id, name, amount) VALUES (?, ?, ?)`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	defer stmt.Close()

	created := make([]entity.Ingredient, 0, len(rows))
	for _, row := range rows {
		res, err := stmt.ExecContext(ctx, recipeID, row.Name, row.Amount)
		if err != nil {
			tx.Rollback()
			return nil, err
		}

		id, err := res.LastInsertId()
		if err != nil {
			tx.Rollback()
			return nil, err
		}

		created = append(created, entity.Ingredient{
			ID:       int(id),
			RecipeID: recipeID,
			Name:     row.Name,
			Amount:   row.Amount,
		})
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *IngredientRepository) UpdateIngredient(ctx context.Context, ingredient *entity.Ingredient) (*entity.Ingredient, error) {
	query := `UPDATE ingredients SET name = ?, amount = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, ingredient.Name, ingredient.Amount, ingredient.ID)
	if err != nil {
		return nil, err
	}
	return ingredient, nil
}

func (r *IngredientRepository) DeleteIngredient(ctx context.Context, id int) error {
	query := `DELETE FROM ingredients WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}
