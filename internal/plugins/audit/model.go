// Package audit records a security trail of account and post actions:
// registrations, logins, logouts, profile changes, account deletion, and
// post mutations. Each action is captured as an Entry and persisted to the
// audit_log table. Users can read their own trail.
//
// This is an optional plugin -- it never changes the outcome of the
// request it observes, only records that it happened.
package audit

import "time"

// --- Action Constants ---
// Each action string follows the pattern "resource.verb" for consistent
// filtering.

const (
	ActionRegistered = "auth.registered"
	ActionLogin      = "auth.login"
	ActionLogout     = "auth.logout"

	ActionProfileUpdated = "user.updated"
	ActionUserDeleted    = "user.deleted"

	ActionPostCreated = "post.created"
	ActionPostUpdated = "post.updated"
	ActionPostDeleted = "post.deleted"
)

// Resource types an entry may point at.
const (
	ResourceUser = "user"
	ResourcePost = "post"
)

// Entry is a single recorded action. UserID is the acting user; the
// resource fields name what was acted on, when there is one.
type Entry struct {
	ID           int64          `json:"id"`
	UserID       string         `json:"user_id"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type,omitempty"`
	ResourceID   string         `json:"resource_id,omitempty"`
	RemoteIP     string         `json:"remote_ip,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Page is one page of a user's trail, in the listing shape used across
// the API.
type Page struct {
	Page       int     `json:"page"`
	Pages      int     `json:"pages"`
	CountItems int     `json:"count_items"`
	Entities   []Entry `json:"entities"`
}
