package middleware

import "github.com/labstack/echo/v4"

const contextKeyResourceID = "resource_id"

// SetResourceID names the resource a handler created or acted on, for
// routes whose path carries no :id (e.g. POST /posts).
func SetResourceID(c echo.Context, id string) {
	c.Set(contextKeyResourceID, id)
}

// ResourceID returns the id set by SetResourceID, falling back to the
// :id path parameter.
func ResourceID(c echo.Context) string {
	if id, ok := c.Get(contextKeyResourceID).(string); ok && id != "" {
		return id
	}
	return c.Param("id")
}
