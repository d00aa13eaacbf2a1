package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"inkpost/internal/cache"
	"inkpost/internal/models"
	"inkpost/internal/notifications"
	"inkpost/internal/repository"

	"gorm.io/gorm"
)

const maxCommentLen = 10000

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	cache       *cache.Cache
	notifier    *notifications.Notifier
}

type CreateCommentInput struct {
	UserID  uint
	PostID  uint
	Content string
}

type UpdateCommentInput struct {
	UserID    uint
	CommentID uint
	Content   string
}

type DeleteCommentInput struct {
	UserID    uint
	CommentID uint
}

// NewCommentService wires the comment use cases. postCache and notifier may be nil.
func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	postCache *cache.Cache,
	notifier *notifications.Notifier,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		cache:       postCache,
		notifier:    notifier,
	}
}

// AddComment creates a comment on an existing post and returns it with its
// author loaded.
func (s *CommentService) AddComment(ctx context.Context, in CreateCommentInput) (*models.Comment, error) {
	postAuthorID, err := s.postRepo.GetAuthorID(ctx, in.PostID)
	if err != nil {
		return nil, notFoundOr(err, "Post", in.PostID, "get post")
	}
	if err := validateCommentContent(in.Content); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Content: in.Content,
		UserID:  in.UserID,
		PostID:  in.PostID,
	}
	if err := s.commentRepo.CreateForPost(ctx, comment); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", in.PostID)
		}
		return nil, unknownAuthor(err, "create comment")
	}
	s.cache.Invalidate(ctx, cache.PostKey(in.PostID))

	s.notifier.PublishAsync(ctx, notifications.Event{
		Type:        notifications.EventCommentCreated,
		PostID:      in.PostID,
		CommentID:   comment.ID,
		ActorID:     in.UserID,
		RecipientID: postAuthorID,
	})
	return comment, nil
}

// ListComments returns the post's comments oldest first. A post without
// comments yields an empty slice.
func (s *CommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetAuthorID(ctx, postID); err != nil {
		return nil, notFoundOr(err, "Post", postID, "get post")
	}
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}

func (s *CommentService) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Comment", id, "get comment")
	}
	return comment, nil
}

// EditComment replaces the comment's content. Only its author may edit it.
func (s *CommentService) EditComment(ctx context.Context, in UpdateCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, notFoundOr(err, "Comment", in.CommentID, "get comment")
	}
	if comment.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own comments")
	}
	if err := validateCommentContent(in.Content); err != nil {
		return nil, err
	}

	if err := s.commentRepo.UpdateContent(ctx, in.CommentID, in.Content); err != nil {
		return nil, notFoundOr(err, "Comment", in.CommentID, "update comment")
	}
	s.cache.Invalidate(ctx, cache.PostKey(comment.PostID))

	updated, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, notFoundOr(err, "Comment", in.CommentID, "load updated comment")
	}

	s.notifier.PublishAsync(ctx, notifications.Event{
		Type:      notifications.EventCommentUpdated,
		PostID:    updated.PostID,
		CommentID: updated.ID,
		ActorID:   in.UserID,
	})
	return updated, nil
}

// DeleteComment removes the comment, which also drops it from its post.
// Only its author may delete it.
func (s *CommentService) DeleteComment(ctx context.Context, in DeleteCommentInput) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, notFoundOr(err, "Comment", in.CommentID, "get comment")
	}
	if comment.UserID != in.UserID {
		return nil, models.NewForbiddenError("You can only delete your own comments")
	}

	if err := s.commentRepo.Delete(ctx, in.CommentID); err != nil {
		return nil, notFoundOr(err, "Comment", in.CommentID, "delete comment")
	}
	s.cache.Invalidate(ctx, cache.PostKey(comment.PostID))

	s.notifier.PublishAsync(ctx, notifications.Event{
		Type:      notifications.EventCommentDeleted,
		PostID:    comment.PostID,
		CommentID: comment.ID,
		ActorID:   in.UserID,
	})
	return comment, nil
}

func validateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return models.NewValidationError("Comment too long (max 10000 characters)")
	}
	return nil
}
