package middlewares

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebridge/hms-backend/internal/common/apperr"
	"github.com/carebridge/hms-backend/pkg/utils"
)

// ContextKeyClaims is the echo context key under which validated claims are
// stored for downstream handlers.
const ContextKeyClaims = "claims"

// JWTMiddleware validates the Bearer token and stores the claims in the
// request context.
func JWTMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorized(c, "Authorization header missing")
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				return unauthorized(c, "Invalid authorization header")
			}
			claims, err := utils.ValidateJWTToken(parts[1])
			if err != nil {
				return unauthorized(c, "Invalid token: "+err.Error())
			}

			c.Set(ContextKeyClaims, claims)
			return next(c)
		}
	}
}

// GetClaims pulls the validated claims out of the echo context.
func GetClaims(c echo.Context) (*utils.Claims, bool) {
	claims, ok := c.Get(ContextKeyClaims).(*utils.Claims)
	return claims, ok
}

// Principal resolves the acting organization and user from the request claims.
// Core services receive both as explicit parameters.
func Principal(c echo.Context) (orgID, userID uuid.UUID, err error) {
	claims, ok := GetClaims(c)
	if !ok {
		return uuid.Nil, uuid.Nil, apperr.InvalidArgument("missing authentication claims")
	}
	orgID, err = claims.OrgID()
	if err != nil {
		return uuid.Nil, uuid.Nil, apperr.InvalidArgument("invalid organization id in token")
	}
	userID, err = claims.PrincipalID()
	if err != nil {
		return uuid.Nil, uuid.Nil, apperr.InvalidArgument("invalid user id in token")
	}
	return orgID, userID, nil
}

func unauthorized(c echo.Context, message string) error {
	return c.JSON(http.StatusUnauthorized, map[string]interface{}{
		"status": "error",
		"error": map[string]interface{}{
			"code":    http.StatusUnauthorized,
			"message": message,
		},
	})
}
