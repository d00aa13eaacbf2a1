package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"inkpost/internal/cache"
	"inkpost/internal/content"
	"inkpost/internal/featureflags"
	"inkpost/internal/middleware"
	"inkpost/internal/models"
	"inkpost/internal/notifications"
	"inkpost/internal/pagination"
	"inkpost/internal/repository"

	"gorm.io/gorm"
)

const (
	maxTitleLen   = 300
	maxContentLen = 50000

	// maxLinkAttempts bounds retries when the orphan sweep removes a freshly
	// resolved tag or category.
	maxLinkAttempts = 2
)

type PostService struct {
	postRepo repository.PostRepository
	names    *NameResolver
	sweeper  *Sweeper
	cache    *cache.Cache
	notifier *notifications.Notifier
	flags    *featureflags.Manager
	renderer *content.Renderer
}

type CreatePostInput struct {
	UserID     uint
	Title      string
	Content    string
	Tags       []string
	Categories []string
}

// UpdatePostInput carries a partial update. Empty Title or Content and nil
// Tags or Categories are left unchanged; a non-nil empty list clears them.
type UpdatePostInput struct {
	UserID     uint
	PostID     uint
	Title      string
	Content    string
	Tags       []string
	Categories []string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

// PostPage is one page of the post listing.
type PostPage struct {
	Posts       []*models.Post `json:"posts"`
	TotalPages  int            `json:"totalPages"`
	CurrentPage int            `json:"currentPage"`
}

// PostDetail is a post together with its current like count.
type PostDetail struct {
	*models.Post
	LikeCount int64 `json:"likeCount"`
}

// NewPostService wires the post use cases. cache, notifier, flags and
// renderer may be nil.
func NewPostService(
	postRepo repository.PostRepository,
	names *NameResolver,
	sweeper *Sweeper,
	postCache *cache.Cache,
	notifier *notifications.Notifier,
	flags *featureflags.Manager,
	renderer *content.Renderer,
) *PostService {
	return &PostService{
		postRepo: postRepo,
		names:    names,
		sweeper:  sweeper,
		cache:    postCache,
		notifier: notifier,
		flags:    flags,
		renderer: renderer,
	}
}

// ListPosts returns page (1-based) of the posts, newest first.
func (s *PostService) ListPosts(ctx context.Context, page, pageSize int) (*PostPage, error) {
	total, err := s.postRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	window := pagination.Paginate(page, pageSize, total)

	posts, err := s.postRepo.List(ctx, window.Limit, window.Offset)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	for _, p := range posts {
		s.render(ctx, p)
	}

	return &PostPage{
		Posts:       posts,
		TotalPages:  window.TotalPages,
		CurrentPage: page,
	}, nil
}

// GetPost returns the post with its like count. The post body may come from
// cache; the like count is always read from the database.
func (s *PostService) GetPost(ctx context.Context, id uint) (*PostDetail, error) {
	var post models.Post
	err := s.cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		fresh, err := s.postRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		s.render(ctx, fresh)
		post = *fresh
		return nil
	})
	if err != nil {
		return nil, notFoundOr(err, "Post", id, "get post")
	}

	likes, err := s.postRepo.CountLikes(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	return &PostDetail{Post: &post, LikeCount: likes}, nil
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if err := validatePostFields(in.Title, in.Content); err != nil {
		return nil, err
	}

	var post *models.Post
	for attempt := 1; ; attempt++ {
		tagIDs, categoryIDs, err := s.resolveNames(ctx, in.Tags, in.Categories)
		if err != nil {
			return nil, err
		}
		post = &models.Post{
			Title:   in.Title,
			Content: in.Content,
			UserID:  in.UserID,
		}
		err = s.postRepo.Create(ctx, post, tagIDs, categoryIDs)
		if err == nil {
			break
		}
		if !errors.Is(err, repository.ErrStaleName) || attempt == maxLinkAttempts {
			return nil, unknownAuthor(err, "create post")
		}
		logStaleNames(ctx, "create post", attempt)
	}

	created, err := s.postRepo.GetByID(ctx, post.ID)
	if err != nil {
		return nil, notFoundOr(err, "Post", post.ID, "load created post")
	}
	s.render(ctx, created)

	s.notifier.PublishAsync(ctx, notifications.Event{
		Type:    notifications.EventPostCreated,
		PostID:  created.ID,
		ActorID: in.UserID,
	})
	return created, nil
}

// UpdatePost applies the provided fields. Only the author may update a post.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	authorID, err := s.postRepo.GetAuthorID(ctx, in.PostID)
	if err != nil {
		return nil, notFoundOr(err, "Post", in.PostID, "get post")
	}
	if authorID != in.UserID {
		return nil, models.NewForbiddenError("You can only update your own posts")
	}
	if err := validatePostFields(in.Title, in.Content); err != nil {
		return nil, err
	}

	var changes repository.PostChanges
	if strings.TrimSpace(in.Title) != "" {
		changes.Title = &in.Title
	}
	if strings.TrimSpace(in.Content) != "" {
		changes.Content = &in.Content
	}
	changes.ReplaceTags = in.Tags != nil
	changes.ReplaceCategories = in.Categories != nil

	if !changes.Empty() {
		for attempt := 1; ; attempt++ {
			if changes.TagIDs, changes.CategoryIDs, err = s.resolveNames(ctx, in.Tags, in.Categories); err != nil {
				return nil, err
			}
			err = s.postRepo.Update(ctx, in.PostID, changes)
			if err == nil {
				break
			}
			if !errors.Is(err, repository.ErrStaleName) || attempt == maxLinkAttempts {
				return nil, notFoundOr(err, "Post", in.PostID, "update post")
			}
			logStaleNames(ctx, "update post", attempt)
		}
		s.cache.Invalidate(ctx, cache.PostKey(in.PostID))
	}

	updated, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, notFoundOr(err, "Post", in.PostID, "load updated post")
	}
	s.render(ctx, updated)

	if !changes.Empty() {
		s.notifier.PublishAsync(ctx, notifications.Event{
			Type:    notifications.EventPostUpdated,
			PostID:  in.PostID,
			ActorID: in.UserID,
		})
	}
	return updated, nil
}

// DeletePost removes the post together with its likes, comments and
// taxonomy links, then sweeps unreferenced tags and categories in the
// background. Only the author may delete a post.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	authorID, err := s.postRepo.GetAuthorID(ctx, in.PostID)
	if err != nil {
		return notFoundOr(err, "Post", in.PostID, "get post")
	}
	if authorID != in.UserID {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	scope := repository.CascadePost
	if s.flags.Enabled(featureflags.LegacyGlobalCascade, in.UserID) {
		scope = repository.CascadeGlobal
		middleware.Logger.WarnContext(ctx, "deleting every like and comment in the system",
			slog.String("flag", featureflags.LegacyGlobalCascade),
			slog.Uint64("post_id", uint64(in.PostID)),
		)
	}

	result, err := s.postRepo.Delete(ctx, in.PostID, scope)
	if err != nil {
		return notFoundOr(err, "Post", in.PostID, "delete post")
	}
	middleware.Logger.InfoContext(ctx, "post deleted",
		slog.Uint64("post_id", uint64(in.PostID)),
		slog.Int64("likes_removed", result.Likes),
		slog.Int64("comments_removed", result.Comments),
	)

	if scope == repository.CascadeGlobal {
		s.cache.InvalidateMatching(ctx, cache.PostKeyPattern)
	} else {
		s.cache.Invalidate(ctx, cache.PostKey(in.PostID))
	}

	s.notifier.PublishAsync(ctx, notifications.Event{
		Type:    notifications.EventPostDeleted,
		PostID:  in.PostID,
		ActorID: in.UserID,
	})
	s.sweeper.SweepAsync(ctx, SweepTriggerPostDelete)
	return nil
}

// LikePost records userID's like and returns the new like count. Liking a
// post twice counts once.
func (s *PostService) LikePost(ctx context.Context, userID, postID uint) (int64, error) {
	authorID, err := s.postRepo.GetAuthorID(ctx, postID)
	if err != nil {
		return 0, notFoundOr(err, "Post", postID, "get post")
	}
	if err := s.postRepo.Like(ctx, userID, postID); err != nil {
		// Both the post and the user are foreign keys; a post deleted since
		// the lookup is reported as missing.
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			if _, getErr := s.postRepo.GetAuthorID(ctx, postID); getErr != nil {
				return 0, notFoundOr(getErr, "Post", postID, "get post")
			}
		}
		return 0, unknownAuthor(err, "like post")
	}
	count, err := s.postRepo.CountLikes(ctx, postID)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}

	s.notifier.PublishAsync(ctx, notifications.Event{
		Type:        notifications.EventPostLiked,
		PostID:      postID,
		ActorID:     userID,
		RecipientID: authorID,
	})
	return count, nil
}

func (s *PostService) UnlikePost(ctx context.Context, userID, postID uint) (int64, error) {
	if _, err := s.postRepo.GetAuthorID(ctx, postID); err != nil {
		return 0, notFoundOr(err, "Post", postID, "get post")
	}
	if err := s.postRepo.Unlike(ctx, userID, postID); err != nil {
		return 0, fmt.Errorf("unlike post: %w", err)
	}
	count, err := s.postRepo.CountLikes(ctx, postID)
	if err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return count, nil
}

// Wait blocks until background work started by DeletePost has finished.
func (s *PostService) Wait() {
	s.sweeper.Wait()
}

// render fills ContentHTML. A rendering failure leaves it empty.
func (s *PostService) render(ctx context.Context, post *models.Post) {
	if s.renderer == nil || post == nil {
		return
	}
	html, err := s.renderer.Render(post.Content)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "markdown render failed",
			slog.Uint64("post_id", uint64(post.ID)),
			slog.String("error", err.Error()),
		)
		return
	}
	post.ContentHTML = html
}

// resolveNames resolves tag and category names. A nil list resolves to nil.
func (s *PostService) resolveNames(ctx context.Context, tags, categories []string) (tagIDs, categoryIDs []uint, err error) {
	if tags != nil {
		if tagIDs, err = s.names.Resolve(ctx, models.KindTag, tags); err != nil {
			return nil, nil, err
		}
	}
	if categories != nil {
		if categoryIDs, err = s.names.Resolve(ctx, models.KindCategory, categories); err != nil {
			return nil, nil, err
		}
	}
	return tagIDs, categoryIDs, nil
}

func logStaleNames(ctx context.Context, action string, attempt int) {
	middleware.Logger.WarnContext(ctx, "tag or category swept during write, resolving again",
		slog.String("action", action),
		slog.Int("attempt", attempt),
	)
}

func validatePostFields(title, content string) error {
	if utf8.RuneCountInString(title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 300 characters)")
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return models.NewValidationError("Content too long (max 50000 characters)")
	}
	return nil
}
