// Package posts manages user-authored posts. Anyone may read a user's
// posts; only the author may update or delete them.
package posts

import (
	"time"
)

// Post is a user-authored entry. UserID is set at creation and never
// reassigned; it is the owner the ownership gate checks.
type Post struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Description *string   `json:"description,omitempty"`
	Comments    *string   `json:"comments,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OwnerID implements auth.Owned.
func (p *Post) OwnerID() string {
	return p.UserID
}

// Field length bounds, counted in characters.
const (
	minTitleLen = 5
	maxTitleLen = 20
	minBodyLen  = 10
	maxBodyLen  = 5000
)

// --- Request DTOs ---

// CreatePostRequest is the JSON body of POST /posts.
type CreatePostRequest struct {
	Title       string  `json:"title"`
	Body        string  `json:"body"`
	Description *string `json:"description"`
	Comments    *string `json:"comments"`
}

// UpdatePostRequest is the JSON body of PATCH /posts/:id. Nil fields are
// left unchanged.
type UpdatePostRequest struct {
	Title       *string `json:"title"`
	Body        *string `json:"body"`
	Description *string `json:"description"`
	Comments    *string `json:"comments"`
}

// --- Service Input DTOs ---

// CreatePostInput is the input for creating a post.
type CreatePostInput struct {
	Title       string
	Body        string
	Description *string
	Comments    *string
}

// UpdatePostInput is a partial update; nil fields are left unchanged.
type UpdatePostInput struct {
	Title       *string
	Body        *string
	Description *string
	Comments    *string
}
