package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/keyxmakerx/postgate/internal/apperror"
)

// PostRepository defines the data access contract for posts.
type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	FindByID(ctx context.Context, id string) (*Post, error)
	Update(ctx context.Context, post *Post) error
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]Post, error)
}

// postColumns is the column list scanned by scanPost.
const postColumns = `id, user_id, title, body, description, comments, created_at, updated_at`

// postRepository implements PostRepository with hand-written MariaDB queries.
type postRepository struct {
	db *sql.DB
}

// NewPostRepository creates a new post repository backed by the given DB pool.
func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*Post, error) {
	p := &Post{}
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Title,
		&p.Body,
		&p.Description,
		&p.Comments,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new post row.
func (r *postRepository) Create(ctx context.Context, post *Post) error {
	query := `INSERT INTO posts (id, user_id, title, body, description, comments, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		post.ID,
		post.UserID,
		post.Title,
		post.Body,
		post.Description,
		post.Comments,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting post: %w", err)
	}
	return nil
}

// FindByID retrieves a post by ID.
// Returns apperror.NotFound if no post exists with this ID.
func (r *postRepository) FindByID(ctx context.Context, id string) (*Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = ?`

	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("post not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying post: %w", err)
	}
	return post, nil
}

// Update writes the mutable columns of post. The owner column is never
// part of an update. Callers load the post first, so no affected-rows
// check: MariaDB reports 0 for an update that changes nothing.
func (r *postRepository) Update(ctx context.Context, post *Post) error {
	query := `UPDATE posts SET title = ?, body = ?, description = ?, comments = ?, updated_at = ?
	          WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query,
		post.Title,
		post.Body,
		post.Description,
		post.Comments,
		post.UpdatedAt,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("updating post: %w", err)
	}
	return nil
}

// Delete removes a post row.
func (r *postRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting post: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return apperror.NewNotFound("post not found")
	}
	return nil
}

// ListByUser returns all posts of userID, newest first.
func (r *postRepository) ListByUser(ctx context.Context, userID string) ([]Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE user_id = ? ORDER BY created_at DESC, id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning post row: %w", err)
		}
		posts = append(posts, *p)
	}

	return posts, rows.Err()
}
