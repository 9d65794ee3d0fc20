package users

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up user routes. All of them require a session;
// update and delete are further limited to the caller's own account.
func RegisterRoutes(e *echo.Echo, h *Handler, requireAuth echo.MiddlewareFunc) {
	g := e.Group("/users", requireAuth)

	g.GET("", h.List)
	g.GET("/by-email", h.GetByEmail)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
