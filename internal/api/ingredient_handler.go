package api

import (
	"fmt"
	"github.com/labstack/echo/v4"
	"net/http"
	"net/url"
	"recipe-service/internal/entity"
	"recipe-service/internal/service"
	"strconv"
)

// Form markers for changing the number of ingredient rows.
const (
	markerAddForm    = "add_form"
	markerRemoveForm = "remove_form"
	markerResetForm  = "reset_form"
)

type IngredientHandler struct {
	ingredientService *service.IngredientService
}

func NewIngredientHandler(ingredientService *service.IngredientService) *IngredientHandler {
	return &IngredientHandler{ingredientService: ingredientService}
}

func newIngredientsURL(recipeID int) string {
	return fmt.Sprintf("/recipes/%d/ingredients/new", recipeID)
}

func withMessage(target, msg string) string {
	if msg == "" {
		return target
	}
	return target + "?msg=" + url.QueryEscape(msg)
}

// rowsFromForm pairs the repeated name and amount fields by position.
func rowsFromForm(params url.Values) []entity.IngredientRow {
	names, amounts := params["name"], params["amount"]
	n := len(names)
	if len(amounts) > n {
		n = len(amounts)
	}

	rows := make([]entity.IngredientRow, n)
	for i := range rows {
		if i < len(names) {
			rows[i].Name = names[i]
		}
		if i < len(amounts) {
			rows[i].Amount = amounts[i]
		}
	}
	return rows
}

// NewIngredientForm --> GET /recipes/:recipe_id/ingredients/new
func (h *IngredientHandler) NewIngredientForm(c echo.Context) error {
	recipeID, err := strconv.Atoi(c.Param("recipe_id"))
	if err != nil {
		return badRequest(c, "Invalid recipe ID")
	}

	form, err := h.ingredientService.NewIngredientForm(c.Request().Context(), currentUserID(c), recipeID)
	if err != nil {
		return respondError(c, err)
	}

	if msg := c.QueryParam("msg"); msg != "" {
		form.Messages = append(form.Messages, msg)
	}
	return c.JSON(http.StatusOK, form)
}

// CreateIngredients --> POST /recipes/:recipe_id/ingredients/new
//
// A request carrying add_form, remove_form or reset_form only changes the
// number of rows and redirects back to the form, so reloading the page never
// repeats the change. Anything else saves the rows.
func (h *IngredientHandler) CreateIngredients(c echo.Context) error {
	ctx := c.Request().Context()
	recipeID, err := strconv.Atoi(c.Param("recipe_id"))
	if err != nil {
		return badRequest(c, "Invalid recipe ID")
	}

	params, err := c.FormParams()
	if err != nil {
		return badRequest(c, "Invalid form payload")
	}
	actorID := currentUserID(c)
	rows := rowsFromForm(params)
	formURL := newIngredientsURL(recipeID)

	switch {
	case params.Has(markerAddForm):
		adj, err := h.ingredientService.AddRow(ctx, actorID, recipeID, rows)
		if err != nil {
			return respondError(c, err)
		}
		return c.Redirect(http.StatusSeeOther, withMessage(formURL, adj.Message))

	case params.Has(markerRemoveForm):
		adj, err := h.ingredientService.RemoveRow(ctx, actorID, recipeID, rows)
		if err != nil {
			return respondError(c, err)
		}
		return c.Redirect(http.StatusSeeOther, withMessage(formURL, adj.Message))

	case params.Has(markerResetForm):
		if err := h.ingredientService.ResetRows(ctx, actorID, recipeID); err != nil {
			return respondError(c, err)
		}
		return c.Redirect(http.StatusSeeOther, formURL)
	}

	if _, err := h.ingredientService.CreateIngredients(ctx, actorID, recipeID, rows); err != nil {
		return respondError(c, err)
	}
	return c.Redirect(http.StatusSeeOther, fmt.Sprintf("/recipes/%d", recipeID))
}

// UpdateIngredient --> PUT /ingredients/:ingredient_id
func (h *IngredientHandler) UpdateIngredient(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("ingredient_id"))
	if err != nil {
		return badRequest(c, "Invalid ingredient ID")
	}

	row := entity.IngredientRow{}
	if err := c.Bind(&row); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	ingredient, err := h.ingredientService.UpdateIngredient(c.Request().Context(), currentUserID(c), id, row)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ingredient)
}

// DeleteIngredient --> DELETE /ingredients/:ingredient_id
func (h *IngredientHandler) DeleteIngredient(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("ingredient_id"))
	if err != nil {
		return badRequest(c, "Invalid ingredient ID")
	}

	recipeID, err := h.ingredientService.DeleteIngredient(c.Request().Context(), currentUserID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int{"recipe_id": recipeID})
}
