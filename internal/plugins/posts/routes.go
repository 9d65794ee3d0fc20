package posts

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up post routes. Listing is public; every mutation
// requires a session and the service enforces ownership.
func RegisterRoutes(e *echo.Echo, h *Handler, requireAuth echo.MiddlewareFunc) {
	g := e.Group("/posts")

	g.GET("/user/:userId", h.ListByUser)

	g.POST("", h.Create, requireAuth)
	g.PATCH("/:id", h.Update, requireAuth)
	g.DELETE("/:id", h.Delete, requireAuth)
}
