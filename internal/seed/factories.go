// Package seed provides helpers to create demo data for development and
// testing. They are never used by the API server.
package seed

import (
	"fmt"
	"strings"

	"inkpost/internal/models"
	"inkpost/internal/service"

	"github.com/brianvoe/gofakeit/v6"
)

var (
	tagPool = []string{
		"go", "rust", "postgres", "redis", "kubernetes", "news", "opinion", "tutorial",
		"release", "security", "performance", "testing", "design", "career", "tooling",
	}

	categoryPool = []string{
		"Engineering", "Product", "Culture", "Announcements", "Deep Dives", "Notes",
	}
)

// Factory builds domain inputs from a deterministic fake data source.
type Factory struct {
	faker *gofakeit.Faker
}

// NewFactory returns a Factory whose output is fully determined by seed.
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

// BuildUser returns an unsaved author. n keeps emails unique within a run.
func (f *Factory) BuildUser(n int) *models.User {
	return &models.User{
		Name:  f.faker.Name(),
		Email: fmt.Sprintf("%s.%d@example.com", strings.ToLower(f.faker.Username()), n),
	}
}

// BuildPost returns a post creation input with markdown content and a few
// tags and categories drawn from fixed pools.
func (f *Factory) BuildPost(authorID uint) service.CreatePostInput {
	var body strings.Builder
	body.WriteString("## " + f.faker.HackerPhrase() + "\n\n")
	body.WriteString(f.faker.Paragraph(2, 3, 12, "\n\n"))

	return service.CreatePostInput{
		UserID:     authorID,
		Title:      strings.TrimSuffix(f.faker.Sentence(6), "."),
		Content:    body.String(),
		Tags:       f.pick(tagPool, f.faker.Number(0, 3)),
		Categories: f.pick(categoryPool, f.faker.Number(1, 2)),
	}
}

// BuildComment returns a comment creation input for postID.
func (f *Factory) BuildComment(authorID, postID uint) service.CreateCommentInput {
	return service.CreateCommentInput{
		UserID:  authorID,
		PostID:  postID,
		Content: f.faker.Sentence(f.faker.Number(4, 20)),
	}
}

// Intn returns a value in [0, n).
func (f *Factory) Intn(n int) int {
	if n <= 1 {
		return 0
	}
	return f.faker.Number(0, n-1)
}

func (f *Factory) pick(pool []string, n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, f.faker.RandomString(pool))
	}
	return out
}
