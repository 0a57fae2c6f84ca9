package api

import (
	"github.com/labstack/echo/v4"
	"net/http"
	"recipe-service/internal/service"
	"strconv"
)

type UserHandler struct {
	userService   *service.UserService
	recipeService *service.RecipeService
}

// NewUserHandler creates a new instance of UserHandler
func NewUserHandler(userService *service.UserService, recipeService *service.RecipeService) *UserHandler {
	return &UserHandler{userService: userService, recipeService: recipeService}
}

// Register creates a new user --> POST /users
func (h *UserHandler) Register(c echo.Context) error {
	input := service.RegisterInput{}
	if err := c.Bind(&input); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	user, err := h.userService.Register(c.Request().Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, user)
}

// Login issues a session token --> POST /login
func (h *UserHandler) Login(c echo.Context) error {
	login := struct {
		Email    string `json:"email" form:"email"`
		Password string `json:"password" form:"password"`
	}{}
	if err := c.Bind(&login); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	token, err := h.userService.Login(c.Request().Context(), login.Email, login.Password)
	if err != nil {
		return respondError(c, err)
	}

	resp := map[string]string{"token": token}
	if next := c.QueryParam("next"); isSafeRedirect(next) {
		resp["next"] = next
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout ends the current session --> POST /logout
func (h *UserHandler) Logout(c echo.Context) error {
	if err := h.userService.Logout(c.Request().Context(), currentUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListUsers --> GET /users
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.userService.ListUsers(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser returns a user and their recipes --> GET /users/:id
func (h *UserHandler) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return badRequest(c, "Invalid ID")
	}

	user, err := h.userService.GetUser(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	recipes, err := h.recipeService.ListRecipesByUser(ctx, id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":    user,
		"recipes": toRecipeResponses(recipes),
	})
}

// UpdateUser --> PUT /users/:id
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return badRequest(c, "Invalid ID")
	}

	input := service.UpdateUserInput{}
	if err := c.Bind(&input); err != nil {
		return badRequest(c, "Invalid request payload")
	}

	user, err := h.userService.UpdateUser(c.Request().Context(), currentUserID(c), id, input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// DeleteUser --> DELETE /users/:id
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return badRequest(c, "Invalid ID")
	}

	if err := h.userService.DeleteUser(c.Request().Context(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
