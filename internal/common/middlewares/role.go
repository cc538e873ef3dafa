package middlewares

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRoles gates a route to the given staff roles. Must run after
// JWTMiddleware.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := GetClaims(c)
			if !ok {
				return unauthorized(c, "Missing authentication claims")
			}
			if !allowed[claims.Role] {
				return c.JSON(http.StatusForbidden, map[string]interface{}{
					"status": "error",
					"error": map[string]interface{}{
						"code":    http.StatusForbidden,
						"message": "You do not have permission to perform this action",
					},
				})
			}
			return next(c)
		}
	}
}
