package repository

import (
	"context"
	"errors"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db    *gorm.DB
	cache *cache.Client
}

// NewPostRepository creates a post repository. c may be nil.
func NewPostRepository(db *gorm.DB, c *cache.Client) PostRepository {
	return &postRepository{db: db, cache: c}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewValidationError(models.MsgDuplicateTitle)
		}
		return models.NewInternalError(err)
	}
	r.cache.InvalidatePostsList(ctx)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return models.NewNotFoundError("Post", id)
			}
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns every post in storage order.
func (r *postRepository) List(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.cache.Aside(ctx, cache.PostsListKey, &posts, cache.PostsListTTL, func() error {
		if err := r.db.WithContext(ctx).Order("id ASC").Find(&posts).Error; err != nil {
			return models.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Update overwrites the editable fields of post. Author, date and ID are kept.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", post.ID).
		Updates(map[string]any{
			"title":    post.Title,
			"subtitle": post.Subtitle,
			"img_url":  post.ImgURL,
			"body":     post.Body,
		})
	if res.Error != nil {
		if isUniqueConstraintError(res.Error) {
			return models.NewValidationError(models.MsgDuplicateTitle)
		}
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	r.cache.InvalidatePost(ctx, post.ID)
	return nil
}

// Delete hard-deletes the post. Its comments are left in place.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	r.cache.InvalidatePost(ctx, id)
	return nil
}
