// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"inkpost/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStaleName reports that a tag or category was removed between name
// resolution and linking, typically by the orphan sweep.
var ErrStaleName = errors.New("linked tag or category no longer exists")

// PostChanges lists the fields of a post update. Nil pointers and false
// Replace flags leave the corresponding data untouched.
type PostChanges struct {
	Title             *string
	Content           *string
	ReplaceTags       bool
	TagIDs            []uint
	ReplaceCategories bool
	CategoryIDs       []uint
}

// Empty reports whether the update would change nothing.
func (c PostChanges) Empty() bool {
	return c.Title == nil && c.Content == nil && !c.ReplaceTags && !c.ReplaceCategories
}

// CascadeScope selects which likes and comments a post deletion removes.
type CascadeScope int

const (
	// CascadePost removes only the deleted post's likes and comments.
	CascadePost CascadeScope = iota
	// CascadeGlobal removes every like and every comment in the system.
	CascadeGlobal
)

// DeleteResult reports how many dependent rows a post deletion removed.
type DeleteResult struct {
	Likes    int64
	Comments int64
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post, tagIDs, categoryIDs []uint) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetAuthorID(ctx context.Context, id uint) (uint, error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id uint, changes PostChanges) error
	Delete(ctx context.Context, id uint, scope CascadeScope) (DeleteResult, error)
	CountLikes(ctx context.Context, postID uint) (int64, error)
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts the post and its ordered tag and category links in one transaction.
func (r *postRepository) Create(ctx context.Context, post *models.Post, tagIDs, categoryIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return err
		}
		if err := insertLinks(tx, models.KindTag, post.ID, tagIDs); err != nil {
			return err
		}
		return insertLinks(tx, models.KindCategory, post.ID, categoryIDs)
	})
}

// insertLinks writes the ordered links of one kind and confirms every
// linked record still exists. A record removed since it was resolved yields
// ErrStaleName, which rolls back the surrounding transaction.
func insertLinks(tx *gorm.DB, kind models.NameKind, postID uint, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}

	var err error
	switch kind {
	case models.KindTag:
		links := make([]models.PostTag, len(ids))
		for i, id := range ids {
			links[i] = models.PostTag{PostID: postID, Position: i, TagID: id}
		}
		err = tx.Omit(clause.Associations).Create(&links).Error
	case models.KindCategory:
		links := make([]models.PostCategory, len(ids))
		for i, id := range ids {
			links[i] = models.PostCategory{PostID: postID, Position: i, CategoryID: id}
		}
		err = tx.Omit(clause.Associations).Create(&links).Error
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%s links: %w", kind, ErrStaleName)
	}
	if err != nil {
		return err
	}

	// Databases without enforced foreign keys accept the dangling link, so
	// count the targets after the insert.
	distinct := uniqueIDs(ids)
	var found int64
	if err := tx.Table(kind.Table()).Where("id IN ?", distinct).Count(&found).Error; err != nil {
		return err
	}
	if found != int64(len(distinct)) {
		return fmt.Errorf("%s links: %w", kind, ErrStaleName)
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// withDetails preloads everything a post response carries.
func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Author").
		Preload("TagLinks", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("TagLinks.Tag").
		Preload("CategoryLinks", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("CategoryLinks.Category").
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("Comments.Author")
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := withDetails(r.db.WithContext(ctx)).First(&post, id).Error; err != nil {
		return nil, err
	}
	post.Hydrate()
	return &post, nil
}

// GetAuthorID returns the author of post id, or gorm.ErrRecordNotFound.
func (r *postRepository) GetAuthorID(ctx context.Context, id uint) (uint, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Select("id", "user_id").First(&post, id).Error; err != nil {
		return 0, err
	}
	return post.UserID, nil
}

// List returns a page of posts, newest first.
func (r *postRepository) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	posts := []*models.Post{}
	err := withDetails(r.db.WithContext(ctx)).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	for _, p := range posts {
		p.Hydrate()
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error
	return count, err
}

// Update applies changes in one transaction. The author column is never written.
func (r *postRepository) Update(ctx context.Context, id uint, changes PostChanges) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		columns := map[string]any{"updated_at": time.Now()}
		if changes.Title != nil {
			columns["title"] = *changes.Title
		}
		if changes.Content != nil {
			columns["content"] = *changes.Content
		}
		res := tx.Model(&models.Post{}).Where("id = ?", id).Updates(columns)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if changes.ReplaceTags {
			if err := tx.Where("post_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
				return err
			}
			if err := insertLinks(tx, models.KindTag, id, changes.TagIDs); err != nil {
				return err
			}
		}
		if changes.ReplaceCategories {
			if err := tx.Where("post_id = ?", id).Delete(&models.PostCategory{}).Error; err != nil {
				return err
			}
			if err := insertLinks(tx, models.KindCategory, id, changes.CategoryIDs); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the post, its links and, depending on scope, likes and
// comments in one transaction.
func (r *postRepository) Delete(ctx context.Context, id uint, scope CascadeScope) (DeleteResult, error) {
	var result DeleteResult
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dependents := func() *gorm.DB {
			if scope == CascadeGlobal {
				return tx.Session(&gorm.Session{AllowGlobalUpdate: true})
			}
			return tx.Where("post_id = ?", id)
		}

		res := dependents().Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		result.Likes = res.RowsAffected

		res = dependents().Delete(&models.Comment{})
		if res.Error != nil {
			return res.Error
		}
		result.Comments = res.RowsAffected

		if err := tx.Where("post_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostCategory{}).Error; err != nil {
			return err
		}

		res = tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	return result, err
}

func (r *postRepository) CountLikes(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

// Like records a like; liking twice is a no-op.
func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	like := models.Like{UserID: userID, PostID: postID}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).
		Create(&like).Error
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{}).Error
}
