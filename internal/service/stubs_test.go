package service

import (
	"context"
	"errors"
	"testing"

	"inkpost/internal/models"
	"inkpost/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn      func(context.Context, *models.Post, []uint, []uint) error
	getByIDFn     func(context.Context, uint) (*models.Post, error)
	getAuthorIDFn func(context.Context, uint) (uint, error)
	listFn        func(context.Context, int, int) ([]*models.Post, error)
	countFn       func(context.Context) (int64, error)
	updateFn      func(context.Context, uint, repository.PostChanges) error
	deleteFn      func(context.Context, uint, repository.CascadeScope) (repository.DeleteResult, error)
	countLikesFn  func(context.Context, uint) (int64, error)
	likeFn        func(context.Context, uint, uint) error
	unlikeFn      func(context.Context, uint, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post, tagIDs, categoryIDs []uint) error {
	return s.createFn(ctx, post, tagIDs, categoryIDs)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) GetAuthorID(ctx context.Context, id uint) (uint, error) {
	return s.getAuthorIDFn(ctx, id)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *postRepoStub) Count(ctx context.Context) (int64, error) {
	return s.countFn(ctx)
}
func (s *postRepoStub) Update(ctx context.Context, id uint, changes repository.PostChanges) error {
	return s.updateFn(ctx, id, changes)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint, scope repository.CascadeScope) (repository.DeleteResult, error) {
	return s.deleteFn(ctx, id, scope)
}
func (s *postRepoStub) CountLikes(ctx context.Context, postID uint) (int64, error) {
	return s.countLikesFn(ctx, postID)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) error {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) error {
	return s.unlikeFn(ctx, userID, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:      func(_ context.Context, _ *models.Post, _, _ []uint) error { return nil },
		getByIDFn:     func(_ context.Context, id uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		getAuthorIDFn: func(_ context.Context, _ uint) (uint, error) { return 1, nil },
		listFn:        func(_ context.Context, _, _ int) ([]*models.Post, error) { return []*models.Post{}, nil },
		countFn:       func(_ context.Context) (int64, error) { return 0, nil },
		updateFn:      func(_ context.Context, _ uint, _ repository.PostChanges) error { return nil },
		deleteFn: func(_ context.Context, _ uint, _ repository.CascadeScope) (repository.DeleteResult, error) {
			return repository.DeleteResult{}, nil
		},
		countLikesFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		likeFn:       func(_ context.Context, _, _ uint) error { return nil },
		unlikeFn:     func(_ context.Context, _, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createForPostFn func(context.Context, *models.Comment) error
	getByIDFn       func(context.Context, uint) (*models.Comment, error)
	listByPostFn    func(context.Context, uint) ([]*models.Comment, error)
	updateContentFn func(context.Context, uint, string) error
	deleteFn        func(context.Context, uint) error
}

func (s *commentRepoStub) CreateForPost(ctx context.Context, comment *models.Comment) error {
	return s.createForPostFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) UpdateContent(ctx context.Context, id uint, content string) error {
	return s.updateContentFn(ctx, id, content)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createForPostFn: func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:       func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listByPostFn:    func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		updateContentFn: func(_ context.Context, _ uint, _ string) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
	}
}

// nameRepoStub is a stub for repository.NameRepository.
type nameRepoStub struct {
	findByNameFn         func(context.Context, models.NameKind, string) (uint, error)
	insertFn             func(context.Context, models.NameKind, string) (uint, error)
	deleteUnreferencedFn func(context.Context, models.NameKind) (int64, error)
}

func (s *nameRepoStub) FindByName(ctx context.Context, kind models.NameKind, name string) (uint, error) {
	return s.findByNameFn(ctx, kind, name)
}
func (s *nameRepoStub) Insert(ctx context.Context, kind models.NameKind, name string) (uint, error) {
	return s.insertFn(ctx, kind, name)
}
func (s *nameRepoStub) DeleteUnreferenced(ctx context.Context, kind models.NameKind) (int64, error) {
	return s.deleteUnreferencedFn(ctx, kind)
}

// memoryNameRepo returns a name stub backed by a map, handing out ids in
// insertion order.
func memoryNameRepo() *nameRepoStub {
	stored := map[string]uint{}
	var next uint
	return &nameRepoStub{
		findByNameFn: func(_ context.Context, kind models.NameKind, name string) (uint, error) {
			if id, ok := stored[string(kind)+"/"+name]; ok {
				return id, nil
			}
			return 0, gorm.ErrRecordNotFound
		},
		insertFn: func(_ context.Context, kind models.NameKind, name string) (uint, error) {
			key := string(kind) + "/" + name
			if _, ok := stored[key]; ok {
				return 0, gorm.ErrDuplicatedKey
			}
			next++
			stored[key] = next
			return next, nil
		},
		deleteUnreferencedFn: func(_ context.Context, _ models.NameKind) (int64, error) { return 0, nil },
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeValidation)
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeForbidden)
}
