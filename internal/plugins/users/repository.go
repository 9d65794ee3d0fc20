package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/keyxmakerx/postgate/internal/apperror"
	"github.com/keyxmakerx/postgate/internal/plugins/auth"
)

// UserRepository defines profile data access beyond what auth needs.
type UserRepository interface {
	List(ctx context.Context, opts ListOptions) ([]auth.User, int, error)
	FindByID(ctx context.Context, id string) (*auth.User, error)
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
	UpdateProfile(ctx context.Context, user *auth.User) error
	Delete(ctx context.Context, id string) error
}

// userRepository implements UserRepository with hand-written MariaDB queries.
type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new profile repository backed by the given DB pool.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

// likeEscaper escapes LIKE wildcards in a user-supplied filter using '!'
// as the escape character, which needs no quoting in MariaDB or SQLite.
var likeEscaper = strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)

// List returns one page of users matching opts plus the total match count.
func (r *userRepository) List(ctx context.Context, opts ListOptions) ([]auth.User, int, error) {
	opts.Normalize()

	var (
		where []string
		args  []any
	)
	addLike := func(column, value string) {
		if value == "" {
			return
		}
		where = append(where, column+` LIKE ? ESCAPE '!'`)
		args = append(args, "%"+likeEscaper.Replace(value)+"%")
	}
	addLike("email", opts.Email)
	addLike("first_name", opts.FirstName)
	addLike("last_name", opts.LastName)
	addLike("city", opts.City)
	if opts.Age != nil {
		where = append(where, "age = ?")
		args = append(args, *opts.Age)
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting users: %w", err)
	}

	direction := "ASC"
	if opts.Desc {
		direction = "DESC"
	}
	query := `SELECT ` + auth.UserColumns() + ` FROM users` + whereClause +
		` ORDER BY ` + sortColumns[opts.Sort] + ` ` + direction + `, id LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, append(args, opts.Limit, opts.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []auth.User
	for rows.Next() {
		u, err := auth.ScanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, *u)
	}

	return users, total, rows.Err()
}

// FindByID retrieves a user by their UUID.
// Returns apperror.NotFound if no user exists with this ID.
func (r *userRepository) FindByID(ctx context.Context, id string) (*auth.User, error) {
	return r.findOne(ctx, "id", id)
}

// FindByEmail retrieves a user by normalized email.
// Returns apperror.NotFound if no user exists with this email.
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.findOne(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
}

// findOne selects a single user by a trusted column name.
func (r *userRepository) findOne(ctx context.Context, column, value string) (*auth.User, error) {
	query := `SELECT ` + auth.UserColumns() + ` FROM users WHERE ` + column + ` = ?`

	user, err := auth.ScanUser(r.db.QueryRowContext(ctx, query, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("user not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying user by %s: %w", column, err)
	}
	return user, nil
}

// UpdateProfile writes the profile columns of user. Email and password
// hash are not touched here.
func (r *userRepository) UpdateProfile(ctx context.Context, user *auth.User) error {
	query := `UPDATE users SET first_name = ?, last_name = ?, city = ?, age = ?, updated_at = ?
	          WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query,
		user.FirstName,
		user.LastName,
		user.City,
		user.Age,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("updating profile: %w", err)
	}
	return nil
}

// Delete removes a user row; posts cascade via the foreign key.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return apperror.NewNotFound("user not found")
	}
	return nil
}
