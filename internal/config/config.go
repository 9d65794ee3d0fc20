// Package config handles loading application configuration from environment
// variables. All config is centralized here so no other package reads env
// vars directly. Sensible defaults are provided for development.
package config

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-sql-driver/mysql"
)

// devSecret is used when JWT_SECRET is unset outside production.
const devSecret = "dev-secret-key-do-not-use-in-production!!"

// Config holds all application configuration. Populated from environment
// variables at startup. Passed to other packages via dependency injection.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string `env:"ENV" envDefault:"development"`

	// Port is the HTTP listen port.
	Port int `env:"PORT" envDefault:"3001"`

	// BaseURL is the public-facing URL, also the default CORS origin.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:3001"`

	// LogLevel controls log verbosity: "debug", "info", "warn", "error".
	LogLevel string `env:"LOG_LEVEL" envDefault:"debug"`

	// CORSOrigins lists extra origins allowed to call the API.
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	// MigrationsPath is the directory holding golang-migrate SQL files.
	// Empty disables running migrations on startup.
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"db/migrations"`

	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
}

// DatabaseConfig holds MariaDB connection parameters. If DATABASE_URL is
// set, it takes precedence over the individual fields.
type DatabaseConfig struct {
	// Host is the MariaDB address in host:port format. If no port is
	// specified, 3306 is appended automatically.
	Host     string `env:"DB_HOST" envDefault:"localhost:3306"`
	User     string `env:"DB_USER" envDefault:"postgate"`
	Password string `env:"DB_PASSWORD" envDefault:"postgate"`
	Name     string `env:"DB_NAME" envDefault:"postgate"`

	// URL bypasses the individual fields when set.
	URL string `env:"DATABASE_URL"`

	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
}

// DSN returns the go-sql-driver/mysql connection string. If DATABASE_URL was
// set, it is returned as-is. Otherwise the DSN is built from the individual
// fields using the driver's Config.FormatDSN() to safely handle special
// characters in passwords.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = ensurePort(d.Host, "3306")
	cfg.DBName = d.Name
	cfg.ParseTime = true
	// golang-migrate runs multi-statement migration files.
	cfg.MultiStatements = true
	return cfg.FormatDSN()
}

// ensurePort appends the default port if the host string doesn't include one.
func ensurePort(host, defaultPort string) string {
	_, _, err := net.SplitHostPort(host)
	if err != nil {
		return net.JoinHostPort(host, defaultPort)
	}
	return host
}

// RedisConfig holds Redis connection parameters. Dial/read/write timeouts
// for session lookups are set through URL query params
// (e.g. "redis://localhost:6379/0?dial_timeout=2s&read_timeout=1s").
type RedisConfig struct {
	URL string `env:"REDIS_URL" envDefault:"redis://localhost:6379"`
}

// AuthConfig holds token and session settings.
//
// TokenExpiry bounds how long a token verifies cryptographically; SessionTTL
// bounds how long its liveness record stays in Redis. A token is usable only
// while both hold, so the effective session length is min(SessionTTL,
// TokenExpiry). Load rejects SessionTTL > TokenExpiry because the extra
// liveness time could never be used.
type AuthConfig struct {
	// Secret is the HS256 signing key.
	Secret string `env:"JWT_SECRET"`

	// TokenExpiry is added to the issue time to form the exp claim.
	TokenExpiry time.Duration `env:"TOKEN_EXPIRY" envDefault:"1h"`

	// SessionKeyPrefix namespaces liveness records in a shared Redis.
	SessionKeyPrefix string `env:"SESSION_KEY_PREFIX" envDefault:"user-token"`

	// SessionTTLSeconds is the liveness record TTL.
	SessionTTLSeconds int `env:"SESSION_TTL_SECONDS" envDefault:"3600"`

	// BcryptCost is the bcrypt work factor for password hashes.
	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`
}

// SessionTTL returns the liveness record TTL as a duration.
func (a AuthConfig) SessionTTL() time.Duration {
	return time.Duration(a.SessionTTLSeconds) * time.Second
}

// Load reads configuration from environment variables with sensible defaults.
// Returns an error if required variables are missing or inconsistent.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Provide a dev-only default secret so local dev works without .env.
	if cfg.Auth.Secret == "" {
		cfg.Auth.Secret = devSecret
	}

	return cfg, nil
}

// validate checks cross-field constraints env tags cannot express.
func (c *Config) validate() error {
	if c.IsProduction() {
		if c.Auth.Secret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if len(c.Auth.Secret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
		}
	}

	if c.Auth.TokenExpiry <= 0 {
		return fmt.Errorf("TOKEN_EXPIRY must be positive")
	}
	if c.Auth.SessionTTLSeconds <= 0 {
		return fmt.Errorf("SESSION_TTL_SECONDS must be positive")
	}
	if c.Auth.SessionTTL() > c.Auth.TokenExpiry {
		return fmt.Errorf("SESSION_TTL_SECONDS (%s) must not exceed TOKEN_EXPIRY (%s)",
			c.Auth.SessionTTL(), c.Auth.TokenExpiry)
	}
	if c.Auth.SessionKeyPrefix == "" {
		return fmt.Errorf("SESSION_KEY_PREFIX must not be empty")
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// IsProduction returns true for "production" or "prod" in any case.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Env)
	return env == "production" || env == "prod"
}

// AllowedOrigins returns the CORS allow-list: BaseURL plus CORS_ORIGINS.
func (c *Config) AllowedOrigins() []string {
	origins := []string{c.BaseURL}
	for _, o := range c.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
