package posts

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyxmakerx/postgate/internal/apperror"
	"github.com/keyxmakerx/postgate/internal/database/dbtest"
	"github.com/keyxmakerx/postgate/internal/plugins/auth"
)

func TestPostRepository(t *testing.T) {
	db := dbtest.New(t)
	users := auth.NewUserRepository(db)
	repo := NewPostRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, users.Create(ctx, &auth.User{
		ID: "u1", Email: "a@x.com", PasswordHash: "h", CreatedAt: base, UpdatedAt: base,
	}))

	older := &Post{ID: "p1", UserID: "u1", Title: "First", Body: "first body text", CreatedAt: base, UpdatedAt: base}
	newer := &Post{ID: "p2", UserID: "u1", Title: "Second", Body: "second body text", CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	posts, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "p2", posts[0].ID, "newest first")

	none, err := repo.ListByUser(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, none)

	comments := "nice"
	older.Title = "Edited"
	older.Comments = &comments
	require.NoError(t, repo.Update(ctx, older))
	// A no-op update is not an error.
	require.NoError(t, repo.Update(ctx, older))

	got, err := repo.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Edited", got.Title)
	require.NotNil(t, got.Comments)
	assert.Equal(t, "nice", *got.Comments)
	assert.Nil(t, got.Description)

	require.NoError(t, repo.Delete(ctx, "p1"))
	_, err = repo.FindByID(ctx, "p1")
	assert.Equal(t, http.StatusNotFound, apperror.SafeCode(err))
	assert.Equal(t, http.StatusNotFound, apperror.SafeCode(repo.Delete(ctx, "p1")))
}

func TestPostRepository_CascadeOnUserDelete(t *testing.T) {
	db := dbtest.New(t)
	users := auth.NewUserRepository(db)
	repo := NewPostRepository(db)
	ctx := context.Background()

	now := time.Now().UTC()
	require.NoError(t, users.Create(ctx, &auth.User{ID: "u1", Email: "a@x.com", PasswordHash: "h", CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, repo.Create(ctx, &Post{ID: "p1", UserID: "u1", Title: "Hello", Body: "some body text", CreatedAt: now, UpdatedAt: now}))

	require.NoError(t, users.Delete(ctx, "u1"))

	posts, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, posts)
}
