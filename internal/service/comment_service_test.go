package service

import (
	"context"
	"strings"
	"testing"

	"inkpost/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCommentService_AddComment_Validation(t *testing.T) {
	t.Parallel()

	svc := NewCommentService(noopCommentRepo(), noopPostRepo(), nil, nil)
	ctx := context.Background()

	t.Run("empty content", func(t *testing.T) {
		t.Parallel()
		_, err := svc.AddComment(ctx, CreateCommentInput{UserID: 1, PostID: 1, Content: "  "})
		assertValidationError(t, err)
	})

	t.Run("content too long", func(t *testing.T) {
		t.Parallel()
		_, err := svc.AddComment(ctx, CreateCommentInput{
			UserID:  1,
			PostID:  1,
			Content: strings.Repeat("x", 10001),
		})
		assertValidationError(t, err)
	})

	t.Run("missing post", func(t *testing.T) {
		t.Parallel()
		postRepo := noopPostRepo()
		postRepo.getAuthorIDFn = func(_ context.Context, _ uint) (uint, error) { return 0, gorm.ErrRecordNotFound }
		svc2 := NewCommentService(noopCommentRepo(), postRepo, nil, nil)
		_, err := svc2.AddComment(ctx, CreateCommentInput{UserID: 1, PostID: 99, Content: "hi"})
		assertNotFoundError(t, err)
	})

	t.Run("post deleted during create", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.createForPostFn = func(_ context.Context, _ *models.Comment) error { return gorm.ErrRecordNotFound }
		svc2 := NewCommentService(commentRepo, noopPostRepo(), nil, nil)
		_, err := svc2.AddComment(ctx, CreateCommentInput{UserID: 1, PostID: 99, Content: "hi"})
		assertNotFoundError(t, err)
	})
}

func TestCommentService_AddThenList(t *testing.T) {
	t.Parallel()

	var stored []*models.Comment
	commentRepo := noopCommentRepo()
	commentRepo.createForPostFn = func(_ context.Context, c *models.Comment) error {
		c.ID = uint(len(stored) + 1)
		c.Author = &models.User{ID: c.UserID, Name: "bob"}
		stored = append(stored, c)
		return nil
	}
	commentRepo.listByPostFn = func(_ context.Context, postID uint) ([]*models.Comment, error) {
		var out []*models.Comment
		for _, c := range stored {
			if c.PostID == postID {
				out = append(out, c)
			}
		}
		return out, nil
	}
	svc := NewCommentService(commentRepo, noopPostRepo(), nil, nil)
	ctx := context.Background()

	empty, err := svc.ListComments(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	comment, err := svc.AddComment(ctx, CreateCommentInput{UserID: 2, PostID: 1, Content: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "bob", comment.Author.Name)

	list, err := svc.ListComments(ctx, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, comment.ID, list[0].ID)
}

func TestCommentService_ListComments_MissingPost(t *testing.T) {
	t.Parallel()

	postRepo := noopPostRepo()
	postRepo.getAuthorIDFn = func(_ context.Context, _ uint) (uint, error) { return 0, gorm.ErrRecordNotFound }
	svc := NewCommentService(noopCommentRepo(), postRepo, nil, nil)

	_, err := svc.ListComments(context.Background(), 4)
	assertNotFoundError(t, err)
}

func TestCommentService_GetComment_NotFound(t *testing.T) {
	t.Parallel()

	commentRepo := noopCommentRepo()
	commentRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Comment, error) { return nil, gorm.ErrRecordNotFound }
	svc := NewCommentService(commentRepo, noopPostRepo(), nil, nil)

	_, err := svc.GetComment(context.Background(), 8)
	assertNotFoundError(t, err)
}

func TestCommentService_EditComment(t *testing.T) {
	t.Parallel()

	t.Run("non-author is forbidden and content unchanged", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Comment, error) {
			return &models.Comment{ID: 1, UserID: 10, Content: "original"}, nil
		}
		commentRepo.updateContentFn = func(_ context.Context, _ uint, _ string) error {
			t.Error("update must not be called")
			return nil
		}
		svc := NewCommentService(commentRepo, noopPostRepo(), nil, nil)

		_, err := svc.EditComment(context.Background(), UpdateCommentInput{UserID: 1, CommentID: 1, Content: "new"})
		assertForbiddenError(t, err)
	})

	t.Run("empty content is invalid", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Comment, error) {
			return &models.Comment{ID: 1, UserID: 1}, nil
		}
		svc := NewCommentService(commentRepo, noopPostRepo(), nil, nil)

		_, err := svc.EditComment(context.Background(), UpdateCommentInput{UserID: 1, CommentID: 1})
		assertValidationError(t, err)
	})

	t.Run("missing comment", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Comment, error) { return nil, gorm.ErrRecordNotFound }
		svc := NewCommentService(commentRepo, noopPostRepo(), nil, nil)

		_, err := svc.EditComment(context.Background(), UpdateCommentInput{UserID: 1, CommentID: 1, Content: "x"})
		assertNotFoundError(t, err)
	})

	t.Run("author can edit", func(t *testing.T) {
		t.Parallel()
		stored := "old"
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, UserID: 1, PostID: 3, Content: stored}, nil
		}
		commentRepo.updateContentFn = func(_ context.Context, _ uint, content string) error {
			stored = content
			return nil
		}
		svc := NewCommentService(commentRepo, noopPostRepo(), nil, nil)

		comment, err := svc.EditComment(context.Background(), UpdateCommentInput{UserID: 1, CommentID: 1, Content: "updated"})
		require.NoError(t, err)
		assert.Equal(t, "updated", comment.Content)
		assert.Equal(t, uint(3), comment.PostID)
	})
}

func TestCommentService_DeleteComment(t *testing.T) {
	t.Parallel()

	t.Run("author can delete", func(t *testing.T) {
		t.Parallel()
		deleted := false
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Comment, error) {
			return &models.Comment{ID: 1, UserID: 1}, nil
		}
		commentRepo.deleteFn = func(_ context.Context, _ uint) error {
			deleted = true
			return nil
		}
		svc := NewCommentService(commentRepo, noopPostRepo(), nil, nil)

		comment, err := svc.DeleteComment(context.Background(), DeleteCommentInput{UserID: 1, CommentID: 1})
		require.NoError(t, err)
		assert.Equal(t, uint(1), comment.ID)
		assert.True(t, deleted)
	})

	t.Run("non-author is forbidden", func(t *testing.T) {
		t.Parallel()
		commentRepo := noopCommentRepo()
		commentRepo.getByIDFn = func(_ context.Context, _ uint) (*models.Comment, error) {
			return &models.Comment{ID: 1, UserID: 10}, nil
		}
		commentRepo.deleteFn = func(_ context.Context, _ uint) error {
			t.Error("delete must not be called")
			return nil
		}
		svc := NewCommentService(commentRepo, noopPostRepo(), nil, nil)

		_, err := svc.DeleteComment(context.Background(), DeleteCommentInput{UserID: 1, CommentID: 1})
		assertForbiddenError(t, err)
	})
}
