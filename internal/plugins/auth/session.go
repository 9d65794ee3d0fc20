package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"
)

// Defaults applied when the operator leaves the session settings unset.
const (
	DefaultSessionKeyPrefix = "user-token"
	DefaultSessionTTL       = time.Hour
)

// SessionManager issues and revokes sessions. A session is a signed token
// plus a liveness record under Key(userID); only the newest token of a user
// is live, since a later Issue overwrites the record.
type SessionManager struct {
	codec  *TokenCodec
	store  CredentialStore
	prefix string
	ttl    time.Duration
}

// NewSessionManager wires a codec to a store. An empty prefix or a
// non-positive ttl fall back to the package defaults.
func NewSessionManager(codec *TokenCodec, store CredentialStore, prefix string, ttl time.Duration) *SessionManager {
	if prefix == "" {
		prefix = DefaultSessionKeyPrefix
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{
		codec:  codec,
		store:  store,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Key returns the namespaced liveness key for userID.
func (m *SessionManager) Key(userID string) string {
	return m.prefix + "-" + userID
}

// TTL returns the liveness record lifetime.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Codec exposes the token codec for decode and verify steps.
func (m *SessionManager) Codec() *TokenCodec {
	return m.codec
}

// Issue signs a token for the subject and stores its liveness record. If
// the store write fails no token is returned: a signed but unrecorded
// token would be rejected at request time anyway.
func (m *SessionManager) Issue(ctx context.Context, userID, email string) (string, error) {
	token, err := m.codec.Sign(userID, email)
	if err != nil {
		return "", err
	}

	if err := m.store.Put(ctx, m.Key(userID), token, m.ttl); err != nil {
		return "", fmt.Errorf("storing liveness record: %w", err)
	}

	return token, nil
}

// Revoke deletes the subject's liveness record. Revoking a subject with
// no session succeeds.
func (m *SessionManager) Revoke(ctx context.Context, userID string) error {
	if err := m.store.Delete(ctx, m.Key(userID)); err != nil {
		return fmt.Errorf("deleting liveness record: %w", err)
	}
	return nil
}

// IsLive reports whether token is the subject's current live session: a
// record exists for the subject and holds exactly this token. A token
// superseded by a later Issue is not live.
func (m *SessionManager) IsLive(ctx context.Context, userID, token string) (bool, error) {
	stored, found, err := m.store.Lookup(ctx, m.Key(userID))
	if err != nil {
		return false, fmt.Errorf("looking up liveness record: %w", err)
	}
	if !found {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(token)) == 1, nil
}
