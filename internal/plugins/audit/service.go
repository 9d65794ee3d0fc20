package audit

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/keyxmakerx/postgate/internal/apperror"
)

// perPage is the number of entries per page of a user's trail.
const perPage = 50

// AuditService handles business logic for the audit log.
type AuditService interface {
	// Log records an entry. Failures are logged here; callers treat it as
	// fire-and-forget since an audit failure must not fail the request.
	Log(ctx context.Context, entry *Entry) error

	// ListForUser returns one page of userID's trail. Pages are 1-indexed.
	ListForUser(ctx context.Context, userID string, page int) (*Page, error)
}

// auditService implements AuditService.
type auditService struct {
	repo AuditRepository
}

// NewAuditService creates a new audit service with the given repository.
func NewAuditService(repo AuditRepository) AuditService {
	return &auditService{repo: repo}
}

// Log validates and persists an entry.
func (s *auditService) Log(ctx context.Context, entry *Entry) error {
	if entry.UserID == "" {
		return apperror.NewBadRequest("user ID is required for audit entry")
	}
	if entry.Action == "" {
		return apperror.NewBadRequest("action is required for audit entry")
	}

	if err := s.repo.Log(ctx, entry); err != nil {
		slog.Error("failed to write audit log entry",
			slog.String("user_id", entry.UserID),
			slog.String("action", entry.Action),
			slog.Any("error", err),
		)
		return apperror.NewInternal(fmt.Errorf("writing audit entry: %w", err))
	}

	return nil
}

// ListForUser returns a page of the trail. Invalid pages are clamped to 1.
func (s *auditService) ListForUser(ctx context.Context, userID string, page int) (*Page, error) {
	if userID == "" {
		return nil, apperror.NewBadRequest("user ID is required")
	}
	if page < 1 {
		page = 1
	}

	entries, total, err := s.repo.ListByUser(ctx, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing audit entries: %w", err))
	}
	if entries == nil {
		entries = []Entry{}
	}

	return &Page{
		Page:       page,
		Pages:      (total + perPage - 1) / perPage,
		CountItems: total,
		Entities:   entries,
	}, nil
}
