package repository

import (
	"context"
	"regexp"
	"testing"

	"inkpost/internal/database"
	"inkpost/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNameRepository_FindAndInsert(t *testing.T) {
	for _, kind := range []models.NameKind{models.KindTag, models.KindCategory} {
		t.Run(string(kind), func(t *testing.T) {
			db := setupSQLiteDB(t)
			repo := NewNameRepository(db)
			ctx := context.Background()

			_, err := repo.FindByName(ctx, kind, "golang")
			assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

			id, err := repo.Insert(ctx, kind, "golang")
			require.NoError(t, err)
			require.NotZero(t, id)

			found, err := repo.FindByName(ctx, kind, "golang")
			require.NoError(t, err)
			assert.Equal(t, id, found)

			_, err = repo.FindByName(ctx, kind, "Golang")
			assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "lookup is exact")

			_, err = repo.Insert(ctx, kind, "golang")
			require.Error(t, err)
			assert.True(t, database.IsDuplicateKey(err))
		})
	}
}

func TestNameRepository_DeleteUnreferenced(t *testing.T) {
	db := setupSQLiteDB(t)
	posts := NewPostRepository(db)
	repo := NewNameRepository(db)
	ctx := context.Background()

	u := createUser(t, db, "u")
	used := createTag(t, db, "used")
	createTag(t, db, "orphan")
	createTag(t, db, "stray")
	keptCategory := createCategory(t, db, "kept")
	require.NoError(t, posts.Create(ctx, &models.Post{Title: "t", Content: "c", UserID: u.ID}, []uint{used}, []uint{keptCategory}))

	removed, err := repo.DeleteUnreferenced(ctx, models.KindTag)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	removed, err = repo.DeleteUnreferenced(ctx, models.KindCategory)
	require.NoError(t, err)
	assert.Zero(t, removed)

	id, err := repo.FindByName(ctx, models.KindTag, "used")
	require.NoError(t, err)
	assert.Equal(t, used, id)
}

func TestNameRepository_DeleteUnreferencedSQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewNameRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(
		`DELETE FROM categories WHERE NOT EXISTS (SELECT 1 FROM post_categories WHERE post_categories.category_id = categories.id)`,
	)).WillReturnResult(sqlmock.NewResult(0, 4))

	removed, err := repo.DeleteUnreferenced(context.Background(), models.KindCategory)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}
