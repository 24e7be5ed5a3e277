// Package seed creates demo data for development databases.
package seed

import (
	"fmt"
	"strings"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
)

// DefaultPassword is the password of every generated user.
const DefaultPassword = "password123"

// Factory builds domain entities with fake content. It does not persist them.
type Factory struct {
	faker *gofakeit.Faker
	now   func() time.Time
}

// NewFactory returns a factory. A zero seed picks a random one.
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed), now: time.Now}
}

// BuildUser returns a user with a unique-looking email. PasswordHash is left
// for the caller.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	first, last := f.faker.FirstName(), f.faker.LastName()
	user := &models.User{
		Username: first + " " + last,
		Email: fmt.Sprintf("%s.%s.%d@example.com",
			strings.ToLower(first), strings.ToLower(last), f.faker.Number(100, 99999)),
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// BuildPost returns a post by author dated within the last maxDays days.
func (f *Factory) BuildPost(author *models.User, maxDays int, overrides ...func(*models.Post)) *models.Post {
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.faker.Number(0, maxDays-1)

	var body strings.Builder
	for i := 0; i < f.faker.Number(2, 4); i++ {
		fmt.Fprintf(&body, "<p>%s</p>\n", f.faker.Paragraph(1, 4, 12, " "))
	}

	post := &models.Post{
		Title:       strings.TrimSuffix(f.faker.Sentence(f.faker.Number(3, 7)), "."),
		Subtitle:    f.faker.Sentence(f.faker.Number(6, 12)),
		Date:        models.FormatDate(f.now().AddDate(0, 0, -daysBack)),
		Body:        body.String(),
		Author:      author.Username,
		AuthorEmail: author.Email,
		ImgURL:      fmt.Sprintf("https://picsum.photos/seed/%s/1200/600", f.faker.UUID()),
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// BuildComment returns a comment by author on post.
func (f *Factory) BuildComment(post *models.Post, author *models.User) *models.Comment {
	return &models.Comment{
		Body:   f.faker.Sentence(f.faker.Number(5, 20)),
		Author: author.Username,
		Date:   models.FormatDate(f.now()),
		PostID: post.ID,
	}
}
