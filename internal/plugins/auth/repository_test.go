package auth

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyxmakerx/postgate/internal/apperror"
	"github.com/keyxmakerx/postgate/internal/database/dbtest"
)

func TestUserRepository_CRUD(t *testing.T) {
	repo := NewUserRepository(dbtest.New(t))
	ctx := context.Background()

	city := "Lisbon"
	age := 40
	now := time.Now().UTC().Truncate(time.Second)
	user := &User{
		ID:           "u1",
		Email:        "a@x.com",
		PasswordHash: "$2a$04$hash",
		City:         &city,
		Age:          &age,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, repo.Create(ctx, user))

	exists, err := repo.EmailExists(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.EmailExists(ctx, "b@x.com")
	require.NoError(t, err)
	assert.False(t, exists)

	got, err := repo.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)
	assert.Equal(t, "$2a$04$hash", got.PasswordHash)
	require.NotNil(t, got.City)
	assert.Equal(t, "Lisbon", *got.City)
	require.NotNil(t, got.Age)
	assert.Equal(t, 40, *got.Age)
	assert.Nil(t, got.FirstName)
	assert.True(t, got.CreatedAt.Equal(now))

	got, err = repo.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	// The unique key rejects a second row with the same email.
	dup := *user
	dup.ID = "u2"
	assert.Error(t, repo.Create(ctx, &dup))

	require.NoError(t, repo.Delete(ctx, "u1"))
	_, err = repo.FindByID(ctx, "u1")
	assert.Equal(t, http.StatusNotFound, apperror.SafeCode(err))
	_, err = repo.FindByEmail(ctx, "a@x.com")
	assert.Equal(t, http.StatusNotFound, apperror.SafeCode(err))
	assert.Equal(t, http.StatusNotFound, apperror.SafeCode(repo.Delete(ctx, "u1")))
}
