// Package users exposes profile reads and self-service profile updates
// and account deletion. Identities themselves are created by the auth
// plugin; this plugin only reads and edits them.
package users

import (
	"strings"

	"github.com/keyxmakerx/postgate/internal/plugins/auth"
)

// Pagination bounds for the user listing.
const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100

	// maxPage keeps (page-1)*limit far from int overflow. Any page past the
	// last one is empty, so the cap never changes a result.
	maxPage = 1_000_000
)

// sortColumns maps accepted sort keys to SQL columns. Anything else falls
// back to created_at, so user input never reaches the ORDER BY clause.
var sortColumns = map[string]string{
	"email":      "email",
	"first_name": "first_name",
	"last_name":  "last_name",
	"city":       "city",
	"age":        "age",
	"created_at": "created_at",
}

// ListOptions filters and pages the user listing.
type ListOptions struct {
	Page  int
	Limit int

	// Substring filters (case-insensitive under the table collation).
	Email     string
	FirstName string
	LastName  string
	City      string

	// Age is an exact match when non-nil.
	Age *int

	Sort string
	Desc bool
}

// Normalize clamps paging and resolves Sort to a known column.
func (o *ListOptions) Normalize() {
	if o.Page < 1 {
		o.Page = defaultPage
	}
	if o.Page > maxPage {
		o.Page = maxPage
	}
	if o.Limit < 1 {
		o.Limit = defaultLimit
	}
	if o.Limit > maxLimit {
		o.Limit = maxLimit
	}
	if _, ok := sortColumns[o.Sort]; !ok {
		o.Sort = "created_at"
	}
}

// Offset returns the row offset of the current page.
func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// ListResult is one page of users.
type ListResult struct {
	Page       int         `json:"page"`
	Pages      int         `json:"pages"`
	CountItems int         `json:"count_items"`
	Entities   []auth.User `json:"entities"`
}

// UpdateProfileRequest is the JSON body of PATCH /users/:id. Nil fields
// are left unchanged.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	City      *string `json:"city"`
	Age       *int    `json:"age"`
}

// UpdateProfileInput is the service-level partial profile update.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	City      *string
	Age       *int
}

// trimPtr trims an optional string; blank becomes nil.
func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
