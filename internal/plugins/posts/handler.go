package posts

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/postgate/internal/apperror"
	"github.com/keyxmakerx/postgate/internal/middleware"
	"github.com/keyxmakerx/postgate/internal/plugins/auth"
)

// Handler handles HTTP requests for posts. Handlers are thin: bind
// request, call service, write JSON. No business logic lives here.
type Handler struct {
	service PostService
}

// NewHandler creates a new post handler.
func NewHandler(service PostService) *Handler {
	return &Handler{service: service}
}

// Create stores a new post owned by the caller (POST /posts).
func (h *Handler) Create(c echo.Context) error {
	var req CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	post, err := h.service.Create(c.Request().Context(), auth.GetUserID(c), CreatePostInput{
		Title:       req.Title,
		Body:        req.Body,
		Description: req.Description,
		Comments:    req.Comments,
	})
	if err != nil {
		return err
	}

	middleware.SetResourceID(c, post.ID)
	return c.JSON(http.StatusCreated, post)
}

// Update patches a post the caller owns (PATCH /posts/:id).
func (h *Handler) Update(c echo.Context) error {
	var req UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	post, err := h.service.Update(c.Request().Context(), auth.GetUserID(c), c.Param("id"), UpdatePostInput{
		Title:       req.Title,
		Body:        req.Body,
		Description: req.Description,
		Comments:    req.Comments,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, post)
}

// Delete removes a post the caller owns (DELETE /posts/:id).
func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), auth.GetUserID(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListByUser returns a user's posts (GET /posts/user/:userId). Public.
func (h *Handler) ListByUser(c echo.Context) error {
	posts, err := h.service.ListByUser(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}
