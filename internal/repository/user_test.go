package repository

import (
	"context"
	"testing"

	"inkpost/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestUserRepository_Upsert(t *testing.T) {
	db := setupSQLiteDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	first := &models.User{Name: "Ada", Email: "ada@example.com"}
	require.NoError(t, repo.Upsert(ctx, first))
	require.NotZero(t, first.ID)

	again := &models.User{Name: "Ada Lovelace", Email: "ada@example.com"}
	require.NoError(t, repo.Upsert(ctx, again))
	assert.Equal(t, first.ID, again.ID)

	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got.Name)

	_, err = repo.GetByID(ctx, 404)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
