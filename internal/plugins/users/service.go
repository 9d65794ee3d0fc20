package users

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/keyxmakerx/postgate/internal/apperror"
	"github.com/keyxmakerx/postgate/internal/plugins/auth"
	"github.com/keyxmakerx/postgate/internal/sanitize"
)

// SessionRevoker drops a user's live session. Satisfied by auth.AuthService.
type SessionRevoker interface {
	RevokeUser(ctx context.Context, userID string) error
}

// UserService defines the business logic contract for profiles.
type UserService interface {
	List(ctx context.Context, opts ListOptions) (*ListResult, error)
	Get(ctx context.Context, id string) (*auth.User, error)
	GetByEmail(ctx context.Context, email string) (*auth.User, error)

	// UpdateProfile and Delete only act on the caller's own account.
	UpdateProfile(ctx context.Context, actorID, userID string, input UpdateProfileInput) (*auth.User, error)
	Delete(ctx context.Context, actorID, userID string) error
}

type userService struct {
	repo     UserRepository
	sessions SessionRevoker
}

// NewUserService creates a new profile service.
func NewUserService(repo UserRepository, sessions SessionRevoker) UserService {
	return &userService{repo: repo, sessions: sessions}
}

// List returns one page of users with the page count.
func (s *userService) List(ctx context.Context, opts ListOptions) (*ListResult, error) {
	opts.Normalize()

	users, total, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing users: %w", err))
	}
	if users == nil {
		users = []auth.User{}
	}

	return &ListResult{
		Page:       opts.Page,
		Pages:      (total + opts.Limit - 1) / opts.Limit,
		CountItems: total,
		Entities:   users,
	}, nil
}

// Get returns a user by id.
func (s *userService) Get(ctx context.Context, id string) (*auth.User, error) {
	return s.findOne(ctx, id, s.repo.FindByID)
}

// GetByEmail returns a user by email. A blank email is a 400.
func (s *userService) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	if strings.TrimSpace(email) == "" {
		return nil, apperror.NewBadRequest("email is required")
	}
	return s.findOne(ctx, email, s.repo.FindByEmail)
}

func (s *userService) findOne(ctx context.Context, key string, find func(context.Context, string) (*auth.User, error)) (*auth.User, error) {
	user, err := find(ctx, key)
	if err != nil {
		if apperror.SafeCode(err) < 500 {
			return nil, err
		}
		return nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}
	return user, nil
}

// UpdateProfile applies a partial update to the caller's own profile.
func (s *userService) UpdateProfile(ctx context.Context, actorID, userID string, input UpdateProfileInput) (*auth.User, error) {
	user, err := auth.Authorize(ctx, actorID, userID, s.repo.FindByID)
	if err != nil {
		return nil, err
	}

	if input.Age != nil && (*input.Age < 0 || *input.Age > 150) {
		return nil, apperror.NewValidation("age must be between 0 and 150")
	}

	if input.FirstName != nil {
		user.FirstName = trimPtr(sanitize.TextPtr(input.FirstName))
	}
	if input.LastName != nil {
		user.LastName = trimPtr(sanitize.TextPtr(input.LastName))
	}
	if input.City != nil {
		user.City = trimPtr(sanitize.TextPtr(input.City))
	}
	if input.Age != nil {
		age := *input.Age
		user.Age = &age
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("updating profile: %w", err))
	}

	slog.Info("profile updated", slog.String("user_id", user.ID))
	return user, nil
}

// Delete removes the caller's own account and drops its session. Posts go
// with it through the foreign key cascade.
func (s *userService) Delete(ctx context.Context, actorID, userID string) error {
	if _, err := auth.Authorize(ctx, actorID, userID, s.repo.FindByID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, userID); err != nil {
		if apperror.SafeCode(err) < 500 {
			return err
		}
		return apperror.NewInternal(fmt.Errorf("deleting user: %w", err))
	}

	// The identity is gone, so a surviving token already fails the
	// identity check; a revoke failure is logged, not returned.
	if err := s.sessions.RevokeUser(ctx, userID); err != nil {
		slog.Warn("failed to revoke session of deleted user",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}

	slog.Info("user deleted", slog.String("user_id", userID))
	return nil
}
