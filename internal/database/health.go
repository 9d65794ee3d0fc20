package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

// Ping calls f.
func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// SQLPinger wraps a *sql.DB pool.
func SQLPinger(db *sql.DB) Pinger {
	return PingerFunc(db.PingContext)
}

// RedisPinger wraps a go-redis client.
func RedisPinger(rdb redis.UniversalClient) Pinger {
	return PingerFunc(func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
}

// CheckAll pings every named backend with a short deadline and returns the
// first failure, prefixed with the backend name.
func CheckAll(ctx context.Context, pingers map[string]Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	for name, p := range pingers {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
