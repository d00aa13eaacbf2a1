package models

import (
	"fmt"
	"time"
)

// Tag is a free-form label attached to posts. Names are unique.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"-"`
}

// Category is a broader classification for posts. Names are unique.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"-"`
}

// NameKind selects which named classification a lookup targets.
type NameKind string

const (
	KindTag      NameKind = "tag"
	KindCategory NameKind = "category"
)

// Table returns the table holding records of this kind.
func (k NameKind) Table() string {
	switch k {
	case KindTag:
		return "tags"
	case KindCategory:
		return "categories"
	}
	panic(fmt.Sprintf("models: unknown name kind %q", string(k)))
}

// LinkTable returns the post link table and its foreign key column for this kind.
func (k NameKind) LinkTable() (table, column string) {
	switch k {
	case KindTag:
		return "post_tags", "tag_id"
	case KindCategory:
		return "post_categories", "category_id"
	}
	panic(fmt.Sprintf("models: unknown name kind %q", string(k)))
}

// AllModels lists every model managed by migrations.
func AllModels() []any {
	return []any{
		&User{},
		&Tag{},
		&Category{},
		&Post{},
		&PostTag{},
		&PostCategory{},
		&Comment{},
		&Like{},
	}
}
