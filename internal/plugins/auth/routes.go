package auth

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/postgate/internal/middleware"
)

// RegisterRoutes sets up all auth routes on the given Echo instance.
// Registration and login are public; logout and me require a session.
//
// POST endpoints are rate-limited to slow brute-force and credential
// stuffing: 10 attempts per IP per minute for login, 5 for registration.
func RegisterRoutes(e *echo.Echo, h *Handler, requireAuth echo.MiddlewareFunc) {
	g := e.Group("/auth")

	g.POST("/registration", h.Register, middleware.RateLimit(5, time.Minute))
	g.POST("/login", h.Login, middleware.RateLimit(10, time.Minute))

	g.POST("/logout", h.Logout, requireAuth)
	g.GET("/me", h.Me, requireAuth)
}
