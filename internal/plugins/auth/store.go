package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrStoreUnavailable wraps every backend failure of a CredentialStore.
// Callers treat it as terminal for the current operation; it never turns
// into an allow.
var ErrStoreUnavailable = errors.New("credential store unavailable")

// CredentialStore is the key-value capability the session manager needs.
// Implementations hold no state the core relies on across requests beyond
// what the backend itself stores.
type CredentialStore interface {
	// Put upserts value under key with the given TTL, replacing any
	// existing value.
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	// Lookup is the existence check: found reports whether key is present,
	// and value is what was stored under it.
	Lookup(ctx context.Context, key string) (value string, found bool, err error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// --- Redis ---

// RedisCredentialStore is the production CredentialStore backed by Redis.
// Call timeouts come from the go-redis client options.
type RedisCredentialStore struct {
	rdb redis.UniversalClient
}

// NewRedisCredentialStore wraps an existing go-redis client.
func NewRedisCredentialStore(rdb redis.UniversalClient) *RedisCredentialStore {
	return &RedisCredentialStore{rdb: rdb}
}

// Put implements CredentialStore with SET key value EX ttl.
func (s *RedisCredentialStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %w", ErrStoreUnavailable, key, err)
	}
	return nil
}

// Lookup implements CredentialStore with GET; redis.Nil means absent.
func (s *RedisCredentialStore) Lookup(ctx context.Context, key string) (string, bool, error) {
	value, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: get %s: %w", ErrStoreUnavailable, key, err)
	}
	return value, true, nil
}

// Delete implements CredentialStore with DEL.
func (s *RedisCredentialStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: del %s: %w", ErrStoreUnavailable, key, err)
	}
	return nil
}

// --- In-process ---

// memoryEntry is a stored value and its expiry instant.
type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryCredentialStore is an in-process CredentialStore for tests and
// single-binary development. Liveness lives only as long as the process.
type MemoryCredentialStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryCredentialStore creates an empty in-process store.
func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Put implements CredentialStore.
func (s *MemoryCredentialStore) Put(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

// Lookup implements CredentialStore. Expired entries are dropped lazily.
func (s *MemoryCredentialStore) Lookup(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

// Delete implements CredentialStore.
func (s *MemoryCredentialStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}
