package posts

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/keyxmakerx/postgate/internal/apperror"
	"github.com/keyxmakerx/postgate/internal/plugins/auth"
	"github.com/keyxmakerx/postgate/internal/sanitize"
)

// PostService defines the business logic contract for posts. Every
// mutation takes the acting user's id and runs the ownership gate.
type PostService interface {
	Create(ctx context.Context, userID string, input CreatePostInput) (*Post, error)
	Update(ctx context.Context, userID, postID string, input UpdatePostInput) (*Post, error)
	Delete(ctx context.Context, userID, postID string) error
	ListByUser(ctx context.Context, userID string) ([]Post, error)
}

// postService implements PostService.
type postService struct {
	repo PostRepository
}

// NewPostService creates a new post service.
func NewPostService(repo PostRepository) PostService {
	return &postService{repo: repo}
}

// Create sanitizes and validates input, then stores a post owned by userID.
func (s *postService) Create(ctx context.Context, userID string, input CreatePostInput) (*Post, error) {
	if userID == "" {
		return nil, apperror.NewUnauthorized("authentication required")
	}

	now := time.Now().UTC()
	post := &Post{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       sanitize.Text(input.Title),
		Body:        sanitize.HTML(input.Body),
		Description: sanitize.HTMLPtr(input.Description),
		Comments:    sanitize.TextPtr(input.Comments),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := validatePost(post); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating post: %w", err))
	}

	slog.Info("post created",
		slog.String("post_id", post.ID),
		slog.String("user_id", userID),
	)

	return post, nil
}

// Update applies a partial update to a post the caller owns.
func (s *postService) Update(ctx context.Context, userID, postID string, input UpdatePostInput) (*Post, error) {
	post, err := auth.Authorize(ctx, userID, postID, s.repo.FindByID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		post.Title = sanitize.Text(*input.Title)
	}
	if input.Body != nil {
		post.Body = sanitize.HTML(*input.Body)
	}
	if input.Description != nil {
		post.Description = sanitize.HTMLPtr(input.Description)
	}
	if input.Comments != nil {
		post.Comments = sanitize.TextPtr(input.Comments)
	}

	if err := validatePost(post); err != nil {
		return nil, err
	}

	post.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, post); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("updating post: %w", err))
	}

	return post, nil
}

// Delete removes a post the caller owns.
func (s *postService) Delete(ctx context.Context, userID, postID string) error {
	if _, err := auth.Authorize(ctx, userID, postID, s.repo.FindByID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, postID); err != nil {
		if apperror.SafeCode(err) < 500 {
			return err
		}
		return apperror.NewInternal(fmt.Errorf("deleting post: %w", err))
	}

	slog.Info("post deleted",
		slog.String("post_id", postID),
		slog.String("user_id", userID),
	)

	return nil
}

// ListByUser returns the posts of userID. A user with no posts is a
// NotFound, matching the public listing contract.
func (s *postService) ListByUser(ctx context.Context, userID string) ([]Post, error) {
	posts, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing posts: %w", err))
	}
	if len(posts) == 0 {
		return nil, apperror.NewNotFound("no posts found for this user")
	}
	return posts, nil
}

// validatePost checks field lengths after sanitization.
func validatePost(p *Post) error {
	if n := utf8.RuneCountInString(p.Title); n < minTitleLen || n > maxTitleLen {
		return apperror.NewValidation(fmt.Sprintf("title must be between %d and %d characters", minTitleLen, maxTitleLen))
	}
	if n := utf8.RuneCountInString(p.Body); n < minBodyLen || n > maxBodyLen {
		return apperror.NewValidation(fmt.Sprintf("body must be between %d and %d characters", minBodyLen, maxBodyLen))
	}
	return nil
}
