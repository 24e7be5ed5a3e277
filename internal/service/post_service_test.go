package service

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/auth"
	"inkwell/internal/featureflags"
	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	author = &auth.Identity{UserID: 1, Username: "ada", Email: "author@example.com"}
	reader = &auth.Identity{UserID: 2, Username: "bob", Email: "bob@example.com"}
	admin  = &auth.Identity{UserID: 3, Username: "root", Email: "admin@example.com"}
)

func validPostInput() PostInput {
	return PostInput{
		Title:    "Hello",
		Subtitle: "World",
		ImgURL:   "https://example.com/a.jpg",
		Body:     "<p>Body</p>",
	}
}

func newPostService(repo *postRepoStub, flags string) *PostService {
	svc := NewPostService(repo, featureflags.NewManager(flags), func(email string) bool {
		return email == "admin@example.com"
	})
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestPostService_CreatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("stamps author and date", func(t *testing.T) {
		repo := noopPostRepo()
		svc := newPostService(repo, "")

		post, err := svc.CreatePost(ctx, CreatePostInput{Identity: author, PostInput: validPostInput()})
		require.NoError(t, err)
		assert.Equal(t, uint(1), post.ID)
		assert.Equal(t, "ada", post.Author)
		assert.Equal(t, "author@example.com", post.AuthorEmail)
		assert.Equal(t, "March 04, 2025", post.Date)
	})

	t.Run("requires a session", func(t *testing.T) {
		svc := newPostService(noopPostRepo(), "")
		_, err := svc.CreatePost(ctx, CreatePostInput{PostInput: validPostInput()})
		requireAppErrorCode(t, err, models.ErrCodeUnauthorized)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		svc := newPostService(noopPostRepo(), "")
		in := validPostInput()
		in.Subtitle = "  "
		_, err := svc.CreatePost(ctx, CreatePostInput{Identity: author, PostInput: in})
		requireAppErrorCode(t, err, models.ErrCodeValidation)
	})

	t.Run("rejects non-http image url", func(t *testing.T) {
		svc := newPostService(noopPostRepo(), "")
		in := validPostInput()
		in.ImgURL = "javascript:alert(1)"
		_, err := svc.CreatePost(ctx, CreatePostInput{Identity: author, PostInput: in})
		requireAppErrorCode(t, err, models.ErrCodeValidation)
	})

	t.Run("duplicate title is returned unchanged", func(t *testing.T) {
		repo := noopPostRepo()
		repo.createFn = func(context.Context, *models.Post) error {
			return models.NewValidationError(models.MsgDuplicateTitle)
		}
		svc := newPostService(repo, "")

		_, err := svc.CreatePost(ctx, CreatePostInput{Identity: author, PostInput: validPostInput()})
		appErr := requireAppErrorCode(t, err, models.ErrCodeValidation)
		assert.Equal(t, models.MsgDuplicateTitle, appErr.Message)
	})
}

func TestPostService_UpdatePost(t *testing.T) {
	ctx := context.Background()

	t.Run("overwrites editable fields only", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, Title: "Old", Author: "ada", Date: "January 01, 2024", AuthorEmail: "author@example.com"}, nil
		}
		var saved *models.Post
		repo.updateFn = func(_ context.Context, p *models.Post) error {
			saved = p
			return nil
		}
		svc := newPostService(repo, "")

		in := validPostInput()
		in.Title = "New"
		_, err := svc.UpdatePost(ctx, UpdatePostInput{Identity: reader, PostID: 5, PostInput: in})
		require.NoError(t, err)
		assert.Equal(t, uint(5), saved.ID)
		assert.Equal(t, "New", saved.Title)
		assert.Equal(t, "ada", saved.Author)
		assert.Equal(t, "January 01, 2024", saved.Date)
	})

	t.Run("missing post", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", id)
		}
		svc := newPostService(repo, "")
		_, err := svc.UpdatePost(ctx, UpdatePostInput{Identity: author, PostID: 9, PostInput: validPostInput()})
		requireAppErrorCode(t, err, models.ErrCodeNotFound)
	})

	t.Run("author only flag forbids other users", func(t *testing.T) {
		svc := newPostService(noopPostRepo(), "author_only_mutations=on")
		_, err := svc.UpdatePost(ctx, UpdatePostInput{Identity: reader, PostID: 1, PostInput: validPostInput()})
		requireAppErrorCode(t, err, models.ErrCodeForbidden)
	})
}

func TestPostService_DeletePost(t *testing.T) {
	ctx := context.Background()

	t.Run("anyone may delete by default", func(t *testing.T) {
		repo := noopPostRepo()
		var deleted uint
		repo.deleteFn = func(_ context.Context, id uint) error {
			deleted = id
			return nil
		}
		svc := newPostService(repo, "")

		require.NoError(t, svc.DeletePost(ctx, DeletePostInput{PostID: 4}))
		assert.Equal(t, uint(4), deleted)
	})

	t.Run("missing post is not found", func(t *testing.T) {
		repo := noopPostRepo()
		repo.getByIDFn = func(_ context.Context, id uint) (*models.Post, error) {
			return nil, models.NewNotFoundError("Post", id)
		}
		err := newPostService(repo, "").DeletePost(ctx, DeletePostInput{PostID: 4})
		requireAppErrorCode(t, err, models.ErrCodeNotFound)
	})
}

func TestPostService_AuthorizeMutation(t *testing.T) {
	post := &models.Post{ID: 1, AuthorEmail: "Author@Example.com"}

	tests := []struct {
		name     string
		flags    string
		identity *auth.Identity
		wantCode string
	}{
		{"flag off allows anonymous", "", nil, ""},
		{"flag on requires session", "author_only_mutations=on", nil, models.ErrCodeUnauthorized},
		{"flag on allows author", "author_only_mutations=on", author, ""},
		{"flag on forbids reader", "author_only_mutations=on", reader, models.ErrCodeForbidden},
		{"flag on allows admin", "author_only_mutations=on", admin, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newPostService(noopPostRepo(), tt.flags).AuthorizeMutation(tt.identity, post)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			requireAppErrorCode(t, err, tt.wantCode)
		})
	}
}
