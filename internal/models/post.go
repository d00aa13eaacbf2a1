package models

import "time"

// Post represents a blog article.
type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Title   string `gorm:"not null" json:"title"`
	Content string `gorm:"type:text;not null" json:"content"`
	// UserID is the author. It is written once on create and never updated.
	UserID uint  `gorm:"not null;index" json:"author_id"`
	Author *User `gorm:"foreignKey:UserID" json:"author,omitempty"`

	TagLinks      []PostTag      `gorm:"foreignKey:PostID" json:"-"`
	CategoryLinks []PostCategory `gorm:"foreignKey:PostID" json:"-"`
	Comments      []Comment      `gorm:"foreignKey:PostID" json:"comments"`

	// Tags and Categories are flattened from the ordered link rows.
	Tags       []Tag      `gorm:"-" json:"tags"`
	Categories []Category `gorm:"-" json:"categories"`
	// ContentHTML is rendered at read time and never persisted.
	ContentHTML string `gorm:"-" json:"content_html,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostTag is one ordered tag reference of a post. The same tag may appear at
// several positions.
type PostTag struct {
	PostID   uint `gorm:"primaryKey;autoIncrement:false"`
	Position int  `gorm:"primaryKey;autoIncrement:false"`
	TagID    uint `gorm:"not null;index"`
	Tag      Tag  `gorm:"foreignKey:TagID"`
}

// PostCategory is one ordered category reference of a post.
type PostCategory struct {
	PostID     uint     `gorm:"primaryKey;autoIncrement:false"`
	Position   int      `gorm:"primaryKey;autoIncrement:false"`
	CategoryID uint     `gorm:"not null;index"`
	Category   Category `gorm:"foreignKey:CategoryID"`
}

// Hydrate copies the preloaded link rows into Tags and Categories, keeping link order.
func (p *Post) Hydrate() {
	p.Tags = make([]Tag, 0, len(p.TagLinks))
	for _, link := range p.TagLinks {
		p.Tags = append(p.Tags, link.Tag)
	}
	p.Categories = make([]Category, 0, len(p.CategoryLinks))
	for _, link := range p.CategoryLinks {
		p.Categories = append(p.Categories, link.Category)
	}
	if p.Comments == nil {
		p.Comments = []Comment{}
	}
}
