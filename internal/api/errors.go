package api

import (
	"errors"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"net/http"
	"os"
	"recipe-service/internal/service"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// respondError maps service errors onto status codes.
func respondError(c echo.Context, err error) error {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, service.ErrRecipeNotFound),
		errors.Is(err, service.ErrIngredientNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrUserExists):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSessionNotFound):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": err.Error()})
	}

	logger.Error().Err(err).Str("path", c.Path()).Msg("Unhandled error")
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": http.StatusText(http.StatusInternalServerError)})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}
