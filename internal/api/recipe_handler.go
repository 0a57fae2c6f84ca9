package api

import (
	"github.com/labstack/echo/v4"
	"net/http"
	"recipe-service/internal/entity"
	"recipe-service/internal/service"
	"strconv"
)

type RecipeHandler struct {
	recipeService *service.RecipeService
}

// NewRecipeHandler creates a new instance of RecipeHandler
func NewRecipeHandler(recipeService *service.RecipeService) *RecipeHandler {
	return &RecipeHandler{recipeService: recipeService}
}

type recipeResponse struct {
	*entity.Recipe
	ImageURL string `json:"image_url"`
}

func toRecipeResponse(r *entity.Recipe) recipeResponse {
	return recipeResponse{Recipe: r, ImageURL: r.ImageURL()}
}

func toRecipeResponses(recipes []*entity.Recipe) []recipeResponse {
	out := make([]recipeResponse, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, toRecipeResponse(r))
	}
	return out
}

// ListRecipes --> GET /recipes
func (h *RecipeHandler) ListRecipes(c echo.Context) error {
	recipes, err := h.recipeService.ListRecipes(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toRecipeResponses(recipes))
}

// MyPage lists the recipes of the logged-in user --> GET /my-page
func (h *RecipeHandler) MyPage(c echo.Context) error {
	recipes, err := h.recipeService.ListRecipesByUser(c.Request().Context(), currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toRecipeResponses(recipes))
}

// GetRecipe --> GET /recipes/:recipe_id
func (h *RecipeHandler) GetRecipe(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("recipe_id"))
	if err != nil {
		return badRequest(c, "Invalid recipe ID")
	}

	recipe, err := h.recipeService.GetRecipe(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toRecipeResponse(recipe))
}

// CreateRecipe --> POST /recipes
func (h *RecipeHandler) CreateRecipe(c echo.Context) error {
	input := service.RecipeInput{}
	if err := c.Bind(&input); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request().Context(), currentUserID(c), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toRecipeResponse(recipe))
}

// UpdateRecipe --> PUT /recipes/:recipe_id
func (h *RecipeHandler) UpdateRecipe(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("recipe_id"))
	if err != nil {
		return badRequest(c, "Invalid recipe ID")
	}

	input := service.RecipeInput{}
	if err := c.Bind(&input); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request().Context(), currentUserID(c), id, input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toRecipeResponse(recipe))
}

// DeleteRecipe --> DELETE /recipes/:recipe_id
func (h *RecipeHandler) DeleteRecipe(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("recipe_id"))
	if err != nil {
		return badRequest(c, "Invalid recipe ID")
	}

	if err := h.recipeService.DeleteRecipe(c.Request().Context(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
