package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// JSONError writes an ErrorBody with the status text of code as "error".
func JSONError(c echo.Context, code int, message string) error {
	return c.JSON(code, ErrorBody{
		Error:   http.StatusText(code),
		Message: message,
	})
}
