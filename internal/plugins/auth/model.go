// Package auth is the bearer-token authentication core of Postgate. It
// issues signed tokens on registration and login, keeps one liveness record
// per user in Redis, validates every protected request against both the
// token signature and that record, and gates mutations on resource
// ownership.
//
// This is a CORE plugin -- always enabled, cannot be disabled.
package auth

import (
	"time"
)

// User represents a registered identity. This is the domain model used
// throughout the application; the users and posts plugins share it.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON responses.
	FirstName    *string   `json:"first_name,omitempty"`
	LastName     *string   `json:"last_name,omitempty"`
	City         *string   `json:"city,omitempty"`
	Age          *int      `json:"age,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OwnerID makes a User its own owner for the ownership gate: profile
// updates and account deletion are self-service only.
func (u *User) OwnerID() string {
	return u.ID
}

// --- Request DTOs (bound from HTTP requests) ---

// RegisterRequest holds the JSON body of POST /auth/registration.
type RegisterRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	City      *string `json:"city"`
	Age       *int    `json:"age"`
}

// LoginRequest holds the JSON body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is returned by registration and login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

// --- Service Input DTOs (passed from handler to service) ---

// RegisterInput is the input for creating a new identity.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName *string
	LastName  *string
	City      *string
	Age       *int
}

// LoginInput is the input for authenticating an identity.
type LoginInput struct {
	Email    string
	Password string
}
