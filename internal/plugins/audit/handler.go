package audit

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/postgate/internal/plugins/auth"
)

// Handler handles HTTP requests for the audit trail.
type Handler struct {
	service AuditService
}

// NewHandler creates a new audit handler.
func NewHandler(service AuditService) *Handler {
	return &Handler{service: service}
}

// Mine returns the caller's own trail (GET /audit/me).
func (h *Handler) Mine(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))

	result, err := h.service.ListForUser(c.Request().Context(), auth.GetUserID(c), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}
