package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/postgate/internal/database"
	"github.com/keyxmakerx/postgate/internal/plugins/audit"
	"github.com/keyxmakerx/postgate/internal/plugins/auth"
	"github.com/keyxmakerx/postgate/internal/plugins/posts"
	"github.com/keyxmakerx/postgate/internal/plugins/users"
)

// RegisterRoutes wires every plugin's repository, service, and handler and
// registers their routes. This is the single place routes are aggregated.
func (a *App) RegisterRoutes() error {
	e := a.Echo

	// --- Auth (core) ---
	authCfg := a.Config.Auth

	var store auth.CredentialStore
	if a.Redis != nil {
		store = auth.NewRedisCredentialStore(a.Redis)
	} else {
		slog.Warn("no Redis client configured; sessions are kept in process memory")
		store = auth.NewMemoryCredentialStore()
	}

	sessions := auth.NewSessionManager(
		auth.NewTokenCodec(authCfg.Secret, authCfg.TokenExpiry),
		store,
		authCfg.SessionKeyPrefix,
		authCfg.SessionTTL(),
	)

	authService, err := auth.NewAuthService(auth.NewUserRepository(a.DB), sessions, authCfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("creating auth service: %w", err)
	}
	requireAuth := auth.RequireAuth(authService)

	auth.RegisterRoutes(e, auth.NewHandler(authService), requireAuth)

	// --- Users ---
	userService := users.NewUserService(users.NewUserRepository(a.DB), authService)
	users.RegisterRoutes(e, users.NewHandler(userService), requireAuth)

	// --- Posts ---
	postService := posts.NewPostService(posts.NewPostRepository(a.DB))
	posts.RegisterRoutes(e, posts.NewHandler(postService), requireAuth)

	// --- Audit ---
	auditService := audit.NewAuditService(audit.NewAuditRepository(a.DB))
	e.Use(audit.Recorder(auditService, auditRules))
	audit.RegisterRoutes(e, audit.NewHandler(auditService), requireAuth)

	// --- Health ---
	e.GET("/healthz", a.healthz)

	return nil
}

// auditRules lists the routes recorded in the audit trail.
var auditRules = audit.Rules{
	"POST /auth/registration": {Action: audit.ActionRegistered, ResourceType: audit.ResourceUser},
	"POST /auth/login":        {Action: audit.ActionLogin, ResourceType: audit.ResourceUser},
	"POST /auth/logout":       {Action: audit.ActionLogout, ResourceType: audit.ResourceUser},
	"PATCH /users/:id":        {Action: audit.ActionProfileUpdated, ResourceType: audit.ResourceUser},
	"DELETE /users/:id":       {Action: audit.ActionUserDeleted, ResourceType: audit.ResourceUser},
	"POST /posts":             {Action: audit.ActionPostCreated, ResourceType: audit.ResourcePost},
	"PATCH /posts/:id":        {Action: audit.ActionPostUpdated, ResourceType: audit.ResourcePost},
	"DELETE /posts/:id":       {Action: audit.ActionPostDeleted, ResourceType: audit.ResourcePost},
}

// healthz reports whether MariaDB and Redis answer a ping.
func (a *App) healthz(c echo.Context) error {
	pingers := map[string]database.Pinger{
		"mariadb": database.SQLPinger(a.DB),
	}
	if a.Redis != nil {
		pingers["redis"] = database.RedisPinger(a.Redis)
	}

	if err := database.CheckAll(c.Request().Context(), pingers); err != nil {
		slog.Warn("health check failed", slog.Any("error", err))
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
