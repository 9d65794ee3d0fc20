package audit

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up audit routes. A user can only read their own trail.
func RegisterRoutes(e *echo.Echo, h *Handler, requireAuth echo.MiddlewareFunc) {
	e.GET("/audit/me", h.Mine, requireAuth)
}
