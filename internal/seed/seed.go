package seed

import (
	"context"
	"fmt"
	"log/slog"

	"inkpost/internal/middleware"
	"inkpost/internal/models"
	"inkpost/internal/repository"
	"inkpost/internal/service"

	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumUsers        int
	NumPosts        int
	CommentsPerPost int
	ShouldClean     bool
	RandomSeed      int64
}

// Summary reports what a run created.
type Summary struct {
	Users    []*models.User
	Posts    int
	Comments int
	Likes    int
}

// Seeder writes demo data through the same services the API uses, so tags
// and categories are resolved exactly as in production.
type Seeder struct {
	db       *gorm.DB
	users    repository.UserRepository
	postRepo repository.PostRepository
	posts    *service.PostService
	comments *service.CommentService
}

func NewSeeder(db *gorm.DB) *Seeder {
	postRepo := repository.NewPostRepository(db)
	nameRepo := repository.NewNameRepository(db)
	return &Seeder{
		db:       db,
		users:    repository.NewUserRepository(db),
		postRepo: postRepo,
		posts:    service.NewPostService(postRepo, service.NewNameResolver(nameRepo), service.NewSweeper(nameRepo), nil, nil, nil, nil),
		comments: service.NewCommentService(repository.NewCommentRepository(db), postRepo, nil, nil),
	}
}

// ClearAll deletes every row the blog owns, dependents first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	global := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true})
	for _, model := range []any{
		&models.Like{},
		&models.Comment{},
		&models.PostTag{},
		&models.PostCategory{},
		&models.Post{},
		&models.Tag{},
		&models.Category{},
		&models.User{},
	} {
		if err := global.Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	middleware.Logger.InfoContext(ctx, "database cleared")
	return nil
}

// Run creates users, posts with comments, and likes.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	if opts.NumUsers < 1 {
		return nil, fmt.Errorf("at least one user is required, got %d", opts.NumUsers)
	}
	if opts.ShouldClean {
		if err := s.ClearAll(ctx); err != nil {
			return nil, err
		}
	}

	f := NewFactory(opts.RandomSeed)
	summary := &Summary{}

	for i := 0; i < opts.NumUsers; i++ {
		u := f.BuildUser(i)
		if err := s.users.Upsert(ctx, u); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		summary.Users = append(summary.Users, u)
	}

	for i := 0; i < opts.NumPosts; i++ {
		author := summary.Users[f.Intn(len(summary.Users))]
		post, err := s.posts.CreatePost(ctx, f.BuildPost(author.ID))
		if err != nil {
			return nil, fmt.Errorf("create post: %w", err)
		}
		summary.Posts++

		for j := 0; j < opts.CommentsPerPost; j++ {
			commenter := summary.Users[f.Intn(len(summary.Users))]
			if _, err := s.comments.AddComment(ctx, f.BuildComment(commenter.ID, post.ID)); err != nil {
				return nil, fmt.Errorf("create comment: %w", err)
			}
			summary.Comments++
		}

		for _, u := range summary.Users {
			if f.Intn(3) != 0 {
				continue
			}
			if err := s.postRepo.Like(ctx, u.ID, post.ID); err != nil {
				return nil, fmt.Errorf("like post: %w", err)
			}
			summary.Likes++
		}
	}

	middleware.Logger.InfoContext(ctx, "seeding finished",
		slog.Int("users", len(summary.Users)),
		slog.Int("posts", summary.Posts),
		slog.Int("comments", summary.Comments),
		slog.Int("likes", summary.Likes),
	)
	return summary, nil
}
