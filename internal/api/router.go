package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
	"net/http"
	"recipe-service/internal/service"
	"time"
)

type RouterConfig struct {
	JWTSecret string
	RateLimit float64
	RateBurst int
}

type Services struct {
	Users       *service.UserService
	Recipes     *service.RecipeService
	Ingredients *service.IngredientService
}

func rateLimiter(cfg RouterConfig) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(cfg.RateLimit),
				Burst:     cfg.RateBurst,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.RealIP(), nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(http.StatusForbidden, map[string]string{"error": "rate limit identifier unavailable"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
		},
	})
}

// NewRouter wires middleware, handlers and routes.
func NewRouter(cfg RouterConfig, svc Services) *echo.Echo {
	userHandler := NewUserHandler(svc.Users, svc.Recipes)
	recipeHandler := NewRecipeHandler(svc.Recipes)
	ingredientHandler := NewIngredientHandler(svc.Ingredients)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(rateLimiter(cfg))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":  "ok",
			"service": "recipe-service",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	// public
	e.POST("/users", userHandler.Register)
	e.POST("/login", userHandler.Login)
	e.GET("/recipes", recipeHandler.ListRecipes)
	e.GET("/recipes/:recipe_id", recipeHandler.GetRecipe)

	auth := []echo.MiddlewareFunc{jwtMiddleware(cfg.JWTSecret), sessionMiddleware(svc.Users)}

	e.POST("/logout", userHandler.Logout, auth...)
	e.GET("/my-page", recipeHandler.MyPage, auth...)
	e.GET("/users", userHandler.ListUsers, auth...)
	e.GET("/users/:id", userHandler.GetUser, auth...)
	e.PUT("/users/:id", userHandler.UpdateUser, auth...)
	e.DELETE("/users/:id", userHandler.DeleteUser, auth...)

	e.POST("/recipes", recipeHandler.CreateRecipe, auth...)
	e.PUT("/recipes/:recipe_id", recipeHandler.UpdateRecipe, auth...)
	e.DELETE("/recipes/:recipe_id", recipeHandler.DeleteRecipe, auth...)

	e.GET("/recipes/:recipe_id/ingredients/new", ingredientHandler.NewIngredientForm, auth...)
	e.POST("/recipes/:recipe_id/ingredients/new", ingredientHandler.CreateIngredients, auth...)
	e.PUT("/ingredients/:ingredient_id", ingredientHandler.UpdateIngredient, auth...)
	e.DELETE("/ingredients/:ingredient_id", ingredientHandler.DeleteIngredient, auth...)

	return e
}
