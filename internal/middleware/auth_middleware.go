package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"fashionPulse/pkg/logger"
	"fashionPulse/pkg/utils"
)

// AuthMiddleware requires a valid bearer token. It guards the admin surface;
// the analytics endpoints stay open because storefront clients fire events
// anonymously.
func AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "missing or malformed authorization header",
				})
			}

			claims, err := utils.ParseJWT(tokenString)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": "invalid token",
				})
			}

			expAt, err := claims.GetExpirationTime()
			if err != nil || time.Now().After(expAt.Time) {
				return c.JSON(http.StatusForbidden, echo.Map{
					"error": "token expired",
				})
			}

			c.Set("actor_id", claims.UserID)
			c.Set("role", claims.Role)

			return next(c)
		}
	}
}

// OptionalAuthMiddleware lifts the actor identity from a bearer token when
// one is present, and lets anonymous requests through untouched. Ranking and
// assignment use it so logged-in actors get stable variant assignment without
// the client having to echo their own id.
func OptionalAuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, ok := bearerToken(c)
			if !ok {
				return next(c)
			}

			claims, err := utils.ParseJWT(tokenString)
			if err != nil {
				logger.Debug("ignoring invalid bearer token", "error", err)
				return next(c)
			}

			if expAt, err := claims.GetExpirationTime(); err == nil && time.Now().Before(expAt.Time) {
				c.Set("actor_id", claims.UserID)
				c.Set("role", claims.Role)
			}

			return next(c)
		}
	}
}

func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || strings.ToUpper(role) != "ADMIN" {
				return c.JSON(http.StatusForbidden, echo.Map{
					"error": "admin access required",
				})
			}

			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, bool) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return "", false
	}

	return tokenParts[1], true
}
