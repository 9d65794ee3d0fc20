package audit

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/postgate/internal/middleware"
	"github.com/keyxmakerx/postgate/internal/plugins/auth"
)

// Rule says what to record for a route.
type Rule struct {
	Action       string
	ResourceType string
}

// Rules maps "METHOD /route/:template" to the action recorded for it.
type Rules map[string]Rule

// Recorder returns global middleware that records an entry for every
// successful request whose route has a rule. The acting user comes from
// the auth context; the resource id from middleware.ResourceID.
// Failed requests and requests without an acting user record nothing.
func Recorder(service AuditService, rules Rules) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := next(c); err != nil {
				return err
			}

			rule, ok := rules[c.Request().Method+" "+c.Path()]
			if !ok || c.Response().Status >= http.StatusBadRequest {
				return nil
			}

			userID := auth.GetUserID(c)
			if userID == "" {
				return nil
			}

			entry := &Entry{
				UserID:       userID,
				Action:       rule.Action,
				ResourceType: rule.ResourceType,
				ResourceID:   middleware.ResourceID(c),
				RemoteIP:     c.RealIP(),
			}
			if ua := c.Request().UserAgent(); ua != "" {
				entry.Details = map[string]any{"user_agent": ua}
			}

			// The response is already written; a canceled client must not
			// drop the entry.
			_ = service.Log(context.WithoutCancel(c.Request().Context()), entry)
			return nil
		}
	}
}
