package api

import (
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"net/http"
	"net/url"
	"recipe-service/internal/service"
	"strings"
)

const (
	tokenContextKey  = "user"
	userIDContextKey = "user_id"
	loginPath        = "/login"
)

// jwtMiddleware verifies the bearer token and leaves it in the context.
func jwtMiddleware(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(secret),
		ContextKey: tokenContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(service.JwtCustomClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return unauthorized(c)
		},
	})
}

// sessionMiddleware rejects tokens that are no longer the user's live
// session, e.g. after logout.
func sessionMiddleware(userService *service.UserService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get(tokenContextKey).(*jwt.Token)
			if !ok {
				return unauthorized(c)
			}
			claims, ok := token.Claims.(*service.JwtCustomClaims)
			if !ok {
				return unauthorized(c)
			}
			userID, err := claims.UserID()
			if err != nil {
				return unauthorized(c)
			}

			if err := userService.ValidateSession(c.Request().Context(), userID, token.Raw); err != nil {
				return unauthorized(c)
			}

			c.Set(userIDContextKey, userID)
			return next(c)
		}
	}
}

func currentUserID(c echo.Context) int {
	id, _ := c.Get(userIDContextKey).(int)
	return id
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{
		"error":     "Unauthorized",
		"login_url": loginURL(c.Request().URL.RequestURI()),
	})
}

// loginURL sends the user back to next after login, but only for local paths.
func loginURL(next string) string {
	if !isSafeRedirect(next) {
		return loginPath
	}
	return loginPath + "?next=" + url.QueryEscape(next)
}

func isSafeRedirect(target string) bool {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return false
	}
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}
