package httpx

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carebridge/hms-backend/internal/common/apperr"
)

// OK writes the standard success envelope: { "status": code, "message": ..., "data": ... }.
func OK(c echo.Context, code int, message string, data interface{}) error {
	return c.JSON(code, map[string]interface{}{
		"status":  code,
		"message": message,
		"data":    data,
	})
}

// Error writes the uniform error envelope:
// { "status": "error", "error": { "code": <int>, "message": <string> } }.
func Error(c echo.Context, err error) error {
	code := apperr.HTTPStatus(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		// Do not leak driver or SQL details to clients.
		message = "Internal server error"
	}
	return c.JSON(code, map[string]interface{}{
		"status": "error",
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	})
}

// BadRequest writes a 400 error envelope with the given message.
func BadRequest(c echo.Context, message string) error {
	return Error(c, apperr.InvalidArgument(message))
}
