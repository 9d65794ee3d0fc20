package auth

import (
	"net/http"
	"net/mail"
	"strings"
	"unicode"

	"github.com/labstack/echo/v4"

	"github.com/keyxmakerx/postgate/internal/apperror"
	"github.com/keyxmakerx/postgate/internal/middleware"
)

// Handler handles HTTP requests for authentication (register, login,
// logout, me). Handlers are thin: they bind the request, call the service,
// and write the JSON response. No business logic lives here.
type Handler struct {
	service AuthService
}

// NewHandler creates a new auth handler with the given service.
func NewHandler(service AuthService) *Handler {
	return &Handler{service: service}
}

// Register creates an account and returns its first token
// (POST /auth/registration).
func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	if msg := validateRegisterRequest(&req); msg != "" {
		return apperror.NewValidation(msg)
	}

	token, user, err := h.service.Register(c.Request().Context(), RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		City:      req.City,
		Age:       req.Age,
	})
	if err != nil {
		return err
	}

	c.Set(contextKeyUserID, user.ID)
	middleware.SetResourceID(c, user.ID)
	return c.JSON(http.StatusCreated, TokenResponse{AccessToken: token})
}

// Login exchanges credentials for a token (POST /auth/login).
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	token, user, err := h.service.Login(c.Request().Context(), LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	// Name the new subject for the access log and audit trail.
	c.Set(contextKeyUserID, user.ID)
	middleware.SetResourceID(c, user.ID)
	return c.JSON(http.StatusOK, TokenResponse{AccessToken: token})
}

// Logout revokes the caller's session (POST /auth/logout). Must be
// mounted behind RequireAuth.
func (h *Handler) Logout(c echo.Context) error {
	if err := h.service.Logout(c.Request().Context(), GetToken(c)); err != nil {
		return err
	}

	middleware.SetResourceID(c, GetUserID(c))
	return c.JSON(http.StatusOK, map[string]string{
		"message": "user logged out successfully",
	})
}

// Me returns the authenticated user (GET /auth/me).
func (h *Handler) Me(c echo.Context) error {
	user := GetUser(c)
	if user == nil {
		return apperror.NewMissingContext()
	}
	return c.JSON(http.StatusOK, user)
}

// --- Validation ---

// Password length bounds. bcrypt ignores input past 72 bytes.
const (
	minPasswordLen = 8
	maxPasswordLen = 72
)

// validateRegisterRequest checks field shapes and returns a user-facing
// message, or "" if valid. Missing email/password are left to the service
// so the "required" error stays a 400.
func validateRegisterRequest(req *RegisterRequest) string {
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return ""
	}

	if len(req.Email) > 255 {
		return "email must be at most 255 characters"
	}
	if addr, err := mail.ParseAddress(req.Email); err != nil || addr.Address != req.Email {
		return "email must be a valid address"
	}

	if msg := validatePassword(req.Password); msg != "" {
		return msg
	}

	if req.Age != nil && (*req.Age < 0 || *req.Age > 150) {
		return "age must be between 0 and 150"
	}

	return ""
}

// validatePassword enforces at least 8 non-space characters with one
// upper-case letter and one digit.
func validatePassword(password string) string {
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return "password must be between 8 and 72 characters"
	}

	var hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsSpace(r):
			return "password must not contain whitespace"
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasDigit {
		return "password must contain an upper-case letter and a digit"
	}

	return ""
}
