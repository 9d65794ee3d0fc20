package auth

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/postgate/internal/apperror"
)

// Context keys for storing the authenticated identity in Echo context.
// Other plugins use the exported getters below instead of the raw keys.
const (
	contextKeyUser   = "auth_user"
	contextKeyUserID = "auth_user_id"
	contextKeyToken  = "auth_token"
)

// bearerScheme is the Authorization header scheme, compared case-insensitively.
const bearerScheme = "bearer"

// RequireAuth returns middleware that authenticates the bearer token on the
// request and injects the resolved user into the context. Rejections go
// through the app error handler as one uniform 401.
func RequireAuth(service AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := BearerToken(c)

			user, err := service.Authenticate(c.Request().Context(), token)
			if err != nil {
				var appErr *apperror.AppError
				if errors.As(err, &appErr) && appErr.Code < 500 {
					slog.Debug("request rejected",
						slog.String("path", c.Request().URL.Path),
						slog.String("remote_ip", c.RealIP()),
						slog.Any("cause", appErr.Internal),
					)
				}
				return err
			}

			c.Set(contextKeyUser, user)
			c.Set(contextKeyUserID, user.ID)
			c.Set(contextKeyToken, token)

			return next(c)
		}
	}
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
// Returns "" when the header is absent or uses another scheme.
func BearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, bearerScheme) {
		return ""
	}
	return strings.TrimSpace(token)
}

// --- Exported getters for other plugins ---

// GetUser retrieves the authenticated user from the Echo context.
// Returns nil if the request is not authenticated (middleware not applied).
func GetUser(c echo.Context) *User {
	user, ok := c.Get(contextKeyUser).(*User)
	if !ok {
		return nil
	}
	return user
}

// GetUserID retrieves the authenticated user's ID from the Echo context.
// Returns empty string if the request is not authenticated.
func GetUserID(c echo.Context) string {
	id, ok := c.Get(contextKeyUserID).(string)
	if !ok {
		return ""
	}
	return id
}

// GetToken retrieves the bearer token the request was authenticated with.
func GetToken(c echo.Context) string {
	token, _ := c.Get(contextKeyToken).(string)
	return token
}
