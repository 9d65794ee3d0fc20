package users

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/postgate/internal/apperror"
	"github.com/keyxmakerx/postgate/internal/plugins/auth"
)

// Handler handles HTTP requests for user profiles.
type Handler struct {
	service UserService
}

// NewHandler creates a new users handler.
func NewHandler(service UserService) *Handler {
	return &Handler{service: service}
}

// List returns a filtered page of users (GET /users).
func (h *Handler) List(c echo.Context) error {
	opts, err := parseListOptions(c)
	if err != nil {
		return err
	}

	result, err := h.service.List(c.Request().Context(), opts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// Get returns a single user (GET /users/:id).
func (h *Handler) Get(c echo.Context) error {
	user, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// GetByEmail returns the user with the given email (GET /users/by-email).
func (h *Handler) GetByEmail(c echo.Context) error {
	user, err := h.service.GetByEmail(c.Request().Context(), c.QueryParam("email"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Update patches the caller's own profile (PATCH /users/:id).
func (h *Handler) Update(c echo.Context) error {
	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), auth.GetUserID(c), c.Param("id"), UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		City:      req.City,
		Age:       req.Age,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Delete removes the caller's own account (DELETE /users/:id).
func (h *Handler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), auth.GetUserID(c), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": "user deleted successfully",
	})
}

// parseListOptions reads paging, filters, and ordering from the query string.
func parseListOptions(c echo.Context) (ListOptions, error) {
	var opts ListOptions

	err := echo.QueryParamsBinder(c).
		Int("page", &opts.Page).
		Int("limit", &opts.Limit).
		String("email", &opts.Email).
		String("first_name", &opts.FirstName).
		String("last_name", &opts.LastName).
		String("city", &opts.City).
		String("sort", &opts.Sort).
		BindError()
	if err != nil {
		return opts, apperror.NewBadRequest("page and limit must be integers")
	}

	if raw := c.QueryParam("age"); raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil {
			return opts, apperror.NewBadRequest("age must be an integer")
		}
		opts.Age = &age
	}

	if opts.Sort != "" {
		if _, ok := sortColumns[opts.Sort]; !ok {
			return opts, apperror.NewBadRequest("unsupported sort field")
		}
	}

	switch strings.ToLower(c.QueryParam("order")) {
	case "", "asc":
	case "desc":
		opts.Desc = true
	default:
		return opts, apperror.NewBadRequest("order must be asc or desc")
	}

	return opts, nil
}
