package service

import (
	"context"
	"errors"
	"testing"

	"inkpost/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNameResolver_ResolveIsIdempotent(t *testing.T) {
	t.Parallel()

	repo := memoryNameRepo()
	inserts := 0
	insert := repo.insertFn
	repo.insertFn = func(ctx context.Context, kind models.NameKind, name string) (uint, error) {
		inserts++
		return insert(ctx, kind, name)
	}
	r := NewNameResolver(repo)
	ctx := context.Background()

	first, err := r.Resolve(ctx, models.KindTag, []string{"go", "rust"})
	require.NoError(t, err)
	second, err := r.Resolve(ctx, models.KindTag, []string{"go", "rust"})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, inserts)
}

func TestNameResolver_KeepsOrderAndDuplicates(t *testing.T) {
	t.Parallel()

	r := NewNameResolver(memoryNameRepo())
	ids, err := r.Resolve(context.Background(), models.KindTag, []string{"news", "go", "news"})
	require.NoError(t, err)
	require.Len(t, ids, 3)
	assert.Equal(t, ids[0], ids[2])
	assert.NotEqual(t, ids[0], ids[1])
}

func TestNameResolver_KindsAreSeparate(t *testing.T) {
	t.Parallel()

	r := NewNameResolver(memoryNameRepo())
	ctx := context.Background()
	tagIDs, err := r.Resolve(ctx, models.KindTag, []string{"go"})
	require.NoError(t, err)
	categoryIDs, err := r.Resolve(ctx, models.KindCategory, []string{"go"})
	require.NoError(t, err)
	assert.NotEqual(t, tagIDs, categoryIDs)
}

func TestNameResolver_EmptyInput(t *testing.T) {
	t.Parallel()

	r := NewNameResolver(memoryNameRepo())
	ids, err := r.Resolve(context.Background(), models.KindCategory, nil)
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

func TestNameResolver_RejectsBlankNames(t *testing.T) {
	t.Parallel()

	repo := memoryNameRepo()
	repo.insertFn = func(_ context.Context, _ models.NameKind, _ string) (uint, error) {
		t.Fatal("insert must not be called")
		return 0, nil
	}
	r := NewNameResolver(repo)

	_, err := r.Resolve(context.Background(), models.KindTag, []string{"go", "   "})
	assertValidationError(t, err)
}

func TestNameResolver_ConcurrentInsertRefetches(t *testing.T) {
	t.Parallel()

	finds := 0
	repo := &nameRepoStub{
		findByNameFn: func(_ context.Context, _ models.NameKind, _ string) (uint, error) {
			finds++
			if finds == 1 {
				return 0, gorm.ErrRecordNotFound
			}
			return 9, nil
		},
		insertFn: func(_ context.Context, _ models.NameKind, _ string) (uint, error) {
			return 0, gorm.ErrDuplicatedKey
		},
	}
	r := NewNameResolver(repo)

	ids, err := r.Resolve(context.Background(), models.KindTag, []string{"go"})
	require.NoError(t, err)
	assert.Equal(t, []uint{9}, ids)
	assert.Equal(t, 2, finds)
}

func TestNameResolver_PropagatesStorageErrors(t *testing.T) {
	t.Parallel()

	dbErr := errors.New("connection refused")
	repo := memoryNameRepo()
	repo.findByNameFn = func(_ context.Context, _ models.NameKind, _ string) (uint, error) {
		return 0, dbErr
	}
	r := NewNameResolver(repo)

	_, err := r.Resolve(context.Background(), models.KindTag, []string{"go"})
	assert.ErrorIs(t, err, dbErr)
	assert.Equal(t, models.CodeInternal, models.ErrorCode(err))
}
