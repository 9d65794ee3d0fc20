package middleware

import (
	"log/slog"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
)

// redactedQueryParams are query keys whose values never reach the log.
var redactedQueryParams = []string{"email"}

// RequestLogger returns middleware that logs every HTTP request with
// structured fields: method, path, status, latency, remote IP, and the
// acting user when userID is non-nil and names one. Headers are never
// logged: they carry tokens.
func RequestLogger(userID func(echo.Context) string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// Let the error handler write the response first so the
				// logged status is the one the client sees.
				c.Error(err)
			}

			latency := time.Since(start)
			req := c.Request()
			res := c.Response()

			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", res.Status),
				slog.Duration("latency", latency),
				slog.String("remote_ip", c.RealIP()),
			}

			if req.URL.RawQuery != "" {
				attrs = append(attrs, slog.String("query", redactQuery(req.URL.Query())))
			}
			if userID != nil {
				if id := userID(c); id != "" {
					attrs = append(attrs, slog.String("user_id", id))
				}
			}

			level := slog.LevelInfo
			if res.Status >= 500 {
				level = slog.LevelError
			} else if res.Status >= 400 {
				level = slog.LevelWarn
			}

			slog.LogAttrs(req.Context(), level, "request", attrs...)

			return nil
		}
	}
}

// redactQuery encodes q with the values of sensitive keys masked.
func redactQuery(q url.Values) string {
	for _, key := range redactedQueryParams {
		if _, ok := q[key]; ok {
			q[key] = []string{"REDACTED"}
		}
	}
	return q.Encode()
}
