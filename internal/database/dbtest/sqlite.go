// Package dbtest provides an in-memory SQLite database carrying the same
// tables as the MariaDB migrations, so repository queries can be tested
// without a database server. Only test code imports this package.
package dbtest

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

// schema mirrors db/migrations in SQLite dialect.
var schema = []string{
	`CREATE TABLE users (
		id            TEXT     NOT NULL PRIMARY KEY,
		email         TEXT     NOT NULL UNIQUE,
		password_hash TEXT     NOT NULL,
		first_name    TEXT     NULL,
		last_name     TEXT     NULL,
		city          TEXT     NULL,
		age           INTEGER  NULL,
		created_at    DATETIME NOT NULL,
		updated_at    DATETIME NOT NULL
	)`,
	`CREATE TABLE posts (
		id          TEXT     NOT NULL PRIMARY KEY,
		user_id     TEXT     NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		title       TEXT     NOT NULL,
		body        TEXT     NOT NULL,
		description TEXT     NULL,
		comments    TEXT     NULL,
		created_at  DATETIME NOT NULL,
		updated_at  DATETIME NOT NULL
	)`,
	`CREATE INDEX idx_posts_user_created ON posts (user_id, created_at)`,
	`CREATE TABLE audit_log (
		id            INTEGER  PRIMARY KEY AUTOINCREMENT,
		user_id       TEXT     NOT NULL,
		action        TEXT     NOT NULL,
		resource_type TEXT     NOT NULL DEFAULT '',
		resource_id   TEXT     NOT NULL DEFAULT '',
		remote_ip     TEXT     NOT NULL DEFAULT '',
		details       TEXT     NULL,
		created_at    DATETIME NOT NULL
	)`,
}

// New opens a fresh in-memory database with the schema applied. The pool
// is pinned to one connection: every :memory: connection is its own
// database.
func New(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		t.Fatalf("enabling foreign keys: %v", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("applying schema: %v", err)
		}
	}
	return db
}
