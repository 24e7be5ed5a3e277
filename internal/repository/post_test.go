package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPost(title string) *models.Post {
	return &models.Post{
		Title:       title,
		Subtitle:    "A subtitle",
		Date:        "March 05, 2024",
		Body:        "<p>Body</p>",
		Author:      "ada",
		ImgURL:      "https://example.com/a.jpg",
		AuthorEmail: "ada@example.com",
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestPostRepository_CreateAndGet(t *testing.T) {
	repo := NewPostRepository(testutil.NewTestDB(t), nil)
	ctx := context.Background()

	post := newPost("First")
	require.NoError(t, repo.Create(ctx, post))
	require.NotZero(t, post.ID)

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "First", got.Title)
	assert.Equal(t, "ada@example.com", got.AuthorEmail)

	_, err = repo.GetByID(ctx, post.ID+100)
	assertAppErrorCode(t, err, models.ErrCodeNotFound)
}

func TestPostRepository_DuplicateTitle(t *testing.T) {
	repo := NewPostRepository(testutil.NewTestDB(t), nil)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newPost("Same")))
	err := repo.Create(ctx, newPost("Same"))
	assertAppErrorCode(t, err, models.ErrCodeValidation)

	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, models.MsgDuplicateTitle, appErr.Message)

	posts, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestPostRepository_ListInStorageOrder(t *testing.T) {
	repo := NewPostRepository(testutil.NewTestDB(t), nil)
	ctx := context.Background()

	for _, title := range []string{"B", "A", "C"} {
		require.NoError(t, repo.Create(ctx, newPost(title)))
	}

	posts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, []string{"B", "A", "C"}, []string{posts[0].Title, posts[1].Title, posts[2].Title})
}

func TestPostRepository_UpdateKeepsAuthorAndDate(t *testing.T) {
	repo := NewPostRepository(testutil.NewTestDB(t), nil)
	ctx := context.Background()

	post := newPost("Original")
	require.NoError(t, repo.Create(ctx, post))
	other := newPost("Taken")
	require.NoError(t, repo.Create(ctx, other))

	err := repo.Update(ctx, &models.Post{
		ID: post.ID, Title: "Edited", Subtitle: "New sub", ImgURL: "https://example.com/b.jpg", Body: "new",
		Author: "mallory", Date: "January 01, 1999",
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Edited", got.Title)
	assert.Equal(t, "New sub", got.Subtitle)
	assert.Equal(t, "new", got.Body)
	assert.Equal(t, "ada", got.Author)
	assert.Equal(t, "March 05, 2024", got.Date)

	err = repo.Update(ctx, &models.Post{ID: post.ID, Title: "Taken", Subtitle: "s", ImgURL: "u", Body: "b"})
	assertAppErrorCode(t, err, models.ErrCodeValidation)

	err = repo.Update(ctx, &models.Post{ID: 999, Title: "Ghost", Subtitle: "s", ImgURL: "u", Body: "b"})
	assertAppErrorCode(t, err, models.ErrCodeNotFound)
}

func TestPostRepository_DeleteIsHardAndFreesTitle(t *testing.T) {
	repo := NewPostRepository(testutil.NewTestDB(t), nil)
	ctx := context.Background()

	post := newPost("Ephemeral")
	require.NoError(t, repo.Create(ctx, post))
	require.NoError(t, repo.Delete(ctx, post.ID))

	_, err := repo.GetByID(ctx, post.ID)
	assertAppErrorCode(t, err, models.ErrCodeNotFound)

	assertAppErrorCode(t, repo.Delete(ctx, post.ID), models.ErrCodeNotFound)

	require.NoError(t, repo.Create(ctx, newPost("Ephemeral")))
}

func TestPostRepository_CacheInvalidation(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	repo := NewPostRepository(testutil.NewTestDB(t), cache.New(rdb))
	ctx := context.Background()

	post := newPost("Cached")
	require.NoError(t, repo.Create(ctx, post))

	_, err = repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	_, err = repo.List(ctx)
	require.NoError(t, err)
	assert.True(t, mr.Exists(cache.PostKey(post.ID)))
	assert.True(t, mr.Exists(cache.PostsListKey))

	require.NoError(t, repo.Update(ctx, &models.Post{ID: post.ID, Title: "Renamed", Subtitle: "s", ImgURL: "u", Body: "b"}))
	assert.False(t, mr.Exists(cache.PostKey(post.ID)))
	assert.False(t, mr.Exists(cache.PostsListKey))

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)

	require.NoError(t, repo.Delete(ctx, post.ID))
	assert.False(t, mr.Exists(cache.PostKey(post.ID)))

	_, err = repo.GetByID(ctx, post.ID)
	assertAppErrorCode(t, err, models.ErrCodeNotFound)
}

func TestPostRepository_GetByIDDatabaseError(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "blog_post" WHERE "blog_post"."id" = $1 ORDER BY "blog_post"."id" LIMIT $2`)).
		WithArgs(1, 1).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.GetByID(context.Background(), 1)
	assertAppErrorCode(t, err, models.ErrCodeInternal)
	assert.NoError(t, mock.ExpectationsWereMet())
}
