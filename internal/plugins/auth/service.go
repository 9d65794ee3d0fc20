package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/keyxmakerx/postgate/internal/apperror"
	"github.com/keyxmakerx/postgate/internal/sanitize"
)

// Causes behind a uniform 401. They are attached as AppError.Internal so
// they reach the logs and errors.Is, never the client.
var (
	ErrMissingCredential = errors.New("missing credential")
	ErrNoActiveSession   = errors.New("no active session")
	ErrIdentityMismatch  = errors.New("identity mismatch")
)

// Client-facing messages. Every request-time rejection shares one message,
// and both login failures share another, so responses cannot be used to
// probe which check failed.
const (
	msgUnauthenticated    = "authentication required"
	msgInvalidCredentials = "invalid email or password"
)

// AuthService defines the business logic contract for authentication.
// Handlers and middleware call these methods -- they never touch the
// repository or the credential store directly.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (token string, user *User, err error)
	Login(ctx context.Context, input LoginInput) (token string, user *User, err error)
	Logout(ctx context.Context, token string) error

	// Authenticate runs the full request-time check on a presented token
	// and resolves the acting identity.
	Authenticate(ctx context.Context, token string) (*User, error)

	// ValidateIdentity resolves a user whose id and email both match.
	ValidateIdentity(ctx context.Context, userID, email string) (*User, error)

	// RevokeUser drops any live session of userID (e.g. on account deletion).
	RevokeUser(ctx context.Context, userID string) error
}

// authService implements AuthService with bcrypt hashing and a
// SessionManager for token issue/revoke.
type authService struct {
	repo     UserRepository
	sessions *SessionManager
	hasher   *passwordHasher
}

// NewAuthService creates a new auth service with the given dependencies.
func NewAuthService(repo UserRepository, sessions *SessionManager, bcryptCost int) (AuthService, error) {
	hasher, err := newPasswordHasher(bcryptCost)
	if err != nil {
		return nil, err
	}
	return &authService{
		repo:     repo,
		sessions: sessions,
		hasher:   hasher,
	}, nil
}

// normalizeEmail is the canonical form stored and looked up.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new identity and issues its first session.
func (s *authService) Register(ctx context.Context, input RegisterInput) (string, *User, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return "", nil, apperror.NewBadRequest("email and password are required")
	}

	// Check if email is already taken before doing expensive hashing.
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return "", nil, apperror.NewInternal(fmt.Errorf("checking email: %w", err))
	}
	if exists {
		return "", nil, apperror.NewConflict("user with this email already exists")
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return "", nil, apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}

	now := time.Now().UTC()
	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    sanitize.TextPtr(input.FirstName),
		LastName:     sanitize.TextPtr(input.LastName),
		City:         sanitize.TextPtr(input.City),
		Age:          input.Age,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if apperror.Is(err, http.StatusConflict) {
			return "", nil, err
		}
		return "", nil, apperror.NewInternal(fmt.Errorf("creating user: %w", err))
	}

	token, err := s.sessions.Issue(ctx, user.ID, user.Email)
	if err != nil {
		// Registration did not complete; don't leave a visible identity
		// the caller was never told about.
		if delErr := s.repo.Delete(ctx, user.ID); delErr != nil {
			slog.Error("failed to roll back user after session issue failure",
				slog.String("user_id", user.ID),
				slog.Any("error", delErr),
			)
		}
		return "", nil, sessionFailure(fmt.Errorf("issuing session: %w", err))
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return token, user, nil
}

// Login authenticates a user by email and password and issues a new
// session, superseding any session the user already had.
func (s *authService) Login(ctx context.Context, input LoginInput) (string, *User, error) {
	email := normalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return "", nil, apperror.NewBadRequest("email and password are required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if apperror.Is(err, http.StatusNotFound) {
			// Same bcrypt effort and same error as a wrong password.
			s.hasher.Waste(input.Password)
			return "", nil, apperror.NewUnauthorized(msgInvalidCredentials)
		}
		return "", nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return "", nil, apperror.NewUnauthorized(msgInvalidCredentials)
	}

	token, err := s.sessions.Issue(ctx, user.ID, user.Email)
	if err != nil {
		return "", nil, sessionFailure(fmt.Errorf("issuing session: %w", err))
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return token, user, nil
}

// Logout revokes the session of whoever the token names. The token is
// only decoded: logout needs to know whose session to drop, not to
// authorize an action.
func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return unauthenticated(ErrMissingCredential)
	}

	claims, err := s.sessions.Codec().DecodeUnsafe(token)
	if err != nil {
		return unauthenticated(err)
	}

	if err := s.RevokeUser(ctx, claims.UserID); err != nil {
		return err
	}

	slog.Info("user logged out", slog.String("user_id", claims.UserID))
	return nil
}

// RevokeUser deletes the liveness record of userID.
func (s *authService) RevokeUser(ctx context.Context, userID string) error {
	if err := s.sessions.Revoke(ctx, userID); err != nil {
		return sessionFailure(err)
	}
	return nil
}

// Authenticate runs the request-time checks in order, short-circuiting on
// the first failure:
//
//  1. a token is present
//  2. it decodes to a subject id (unverified)
//  3. the subject's liveness record exists and holds this token
//  4. signature and expiry verify
//  5. the verified id and email resolve to an existing identity
//
// Every failure is the same 401; the cause is kept in Internal. A store
// outage at step 3 is a 503, never an allow.
func (s *authService) Authenticate(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, unauthenticated(ErrMissingCredential)
	}

	codec := s.sessions.Codec()

	decoded, err := codec.DecodeUnsafe(token)
	if err != nil {
		return nil, unauthenticated(err)
	}

	live, err := s.sessions.IsLive(ctx, decoded.UserID, token)
	if err != nil {
		return nil, sessionFailure(err)
	}
	if !live {
		return nil, unauthenticated(ErrNoActiveSession)
	}

	verified, err := codec.Verify(token)
	if err != nil {
		return nil, unauthenticated(err)
	}

	return s.ValidateIdentity(ctx, verified.UserID, verified.Email)
}

// ValidateIdentity looks up userID and checks its email matches.
func (s *authService) ValidateIdentity(ctx context.Context, userID, email string) (*User, error) {
	if userID == "" || email == "" {
		return nil, unauthenticated(ErrIdentityMismatch)
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if apperror.Is(err, http.StatusNotFound) {
			return nil, unauthenticated(ErrIdentityMismatch)
		}
		return nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	if user.Email != normalizeEmail(email) {
		return nil, unauthenticated(ErrIdentityMismatch)
	}

	return user, nil
}

// --- Helpers ---

// unauthenticated builds the uniform 401 carrying cause for logs.
func unauthenticated(cause error) *apperror.AppError {
	err := apperror.NewUnauthorized(msgUnauthenticated)
	err.Internal = cause
	return err
}

// sessionFailure maps a session manager error to a client-safe error:
// 503 when the credential store is down, 500 otherwise.
func sessionFailure(err error) *apperror.AppError {
	if errors.Is(err, ErrStoreUnavailable) {
		return apperror.NewUnavailable(err)
	}
	return apperror.NewInternal(err)
}
