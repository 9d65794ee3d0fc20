package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// dummyPassword is hashed once per hasher so logins for unknown emails
// spend the same bcrypt effort as logins with a wrong password.
const dummyPassword = "postgate-timing-equalizer"

// passwordHasher hashes and checks passwords with bcrypt. bcrypt salts
// every hash and its comparison runs in constant time for a given cost.
type passwordHasher struct {
	cost      int
	dummyHash []byte
}

// newPasswordHasher creates a hasher with the given bcrypt cost, clamped
// to bcrypt's supported range.
func newPasswordHasher(cost int) (*passwordHasher, error) {
	cost = min(max(cost, bcrypt.MinCost), bcrypt.MaxCost)

	dummy, err := bcrypt.GenerateFromPassword([]byte(dummyPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("hashing dummy password: %w", err)
	}

	return &passwordHasher{cost: cost, dummyHash: dummy}, nil
}

// Hash returns the bcrypt hash of password.
func (h *passwordHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Verify reports whether password matches hash. A malformed hash is a
// mismatch, not an error.
func (h *passwordHasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Waste burns one comparison against the dummy hash.
func (h *passwordHasher) Waste(password string) {
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(password))
}
