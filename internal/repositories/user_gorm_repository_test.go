package repositories_test

import (
	"errors"
	"testing"

	"clothshop/internal/models"
	"clothshop/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGORMUserRepository(t *testing.T) {
	db, err := repositories.OpenUserDB("file:user_repo_test?mode=memory&cache=shared")
	require.NoError(t, err)
	repo := repositories.NewGORMUserRepository(db)

	n, err := repo.Count()
	require.NoError(t, err)
	assert.Zero(t, n)

	user := &models.User{Username: "student", Password: "hash"}
	require.NoError(t, repo.Create(user))
	assert.NotEmpty(t, user.ID)

	got, err := repo.GetByUsername("student")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "hash", got.Password)

	_, err = repo.GetByUsername("nobody")
	assert.True(t, errors.Is(err, repositories.ErrUserNotFound))

	// Usernames are unique.
	assert.Error(t, repo.Create(&models.User{Username: "student", Password: "other"}))

	n, err = repo.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
