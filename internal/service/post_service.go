package service

import (
	"context"
	"strings"
	"time"

	"inkwell/internal/auth"
	"inkwell/internal/featureflags"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type PostService struct {
	postRepo repository.PostRepository
	flags    *featureflags.Manager
	isAdmin  func(email string) bool
	now      func() time.Time
}

type PostInput struct {
	Title    string
	Subtitle string
	ImgURL   string
	Body     string
}

type CreatePostInput struct {
	Identity *auth.Identity
	PostInput
}

type UpdatePostInput struct {
	Identity *auth.Identity
	PostID   uint
	PostInput
}

type DeletePostInput struct {
	Identity *auth.Identity
	PostID   uint
}

func NewPostService(
	postRepo repository.PostRepository,
	flags *featureflags.Manager,
	isAdmin func(email string) bool,
) *PostService {
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	return &PostService{
		postRepo: postRepo,
		flags:    flags,
		isAdmin:  isAdmin,
		now:      time.Now,
	}
}

func (s *PostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	return s.postRepo.List(ctx)
}

func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id)
}

// CreatePost stores a new post authored by the session user and dated today.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	ctx, span := observability.StartSpan(ctx, "service.post", "create")
	defer span.End()

	if !in.Identity.Authenticated() {
		return nil, models.NewUnauthorizedError(models.MsgLoginRequired)
	}
	fields := in.PostInput.trimmed()
	if err := fields.validate(); err != nil {
		return nil, err
	}

	post := &models.Post{
		Title:       fields.Title,
		Subtitle:    fields.Subtitle,
		ImgURL:      fields.ImgURL,
		Body:        fields.Body,
		Author:      in.Identity.Username,
		AuthorEmail: in.Identity.Email,
		Date:        models.FormatDate(s.now()),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		span.SetError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("post.id", int(post.ID)))
	observability.ContentWrites.WithLabelValues("post", "create").Inc()
	return post, nil
}

// UpdatePost overwrites title, subtitle, image URL and body.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	ctx, span := observability.StartSpan(ctx, "service.post", "update",
		attribute.Int("post.id", int(in.PostID)))
	defer span.End()

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizeMutation(in.Identity, post); err != nil {
		return nil, err
	}
	fields := in.PostInput.trimmed()
	if err := fields.validate(); err != nil {
		return nil, err
	}

	post.Title = fields.Title
	post.Subtitle = fields.Subtitle
	post.ImgURL = fields.ImgURL
	post.Body = fields.Body
	if err := s.postRepo.Update(ctx, post); err != nil {
		span.SetError(err)
		return nil, err
	}
	observability.ContentWrites.WithLabelValues("post", "update").Inc()
	return post, nil
}

// DeletePost hard-deletes a post.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	ctx, span := observability.StartSpan(ctx, "service.post", "delete",
		attribute.Int("post.id", int(in.PostID)))
	defer span.End()

	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		return err
	}
	if err := s.AuthorizeMutation(in.Identity, post); err != nil {
		return err
	}
	if err := s.postRepo.Delete(ctx, post.ID); err != nil {
		span.SetError(err)
		return err
	}
	observability.ContentWrites.WithLabelValues("post", "delete").Inc()
	return nil
}

// AuthorizeMutation reports whether identity may edit or delete post. Without
// the author_only_mutations flag anyone may.
func (s *PostService) AuthorizeMutation(identity *auth.Identity, post *models.Post) error {
	var userID uint
	if identity != nil {
		userID = identity.UserID
	}
	if !s.flags.Enabled(featureflags.AuthorOnlyMutations, userID) {
		return nil
	}
	if !identity.Authenticated() {
		return models.NewUnauthorizedError(models.MsgLoginRequired)
	}
	if s.isAdmin(identity.Email) {
		return nil
	}
	if !strings.EqualFold(identity.Email, post.AuthorEmail) {
		return models.NewForbiddenError(models.MsgNotPostAuthor)
	}
	return nil
}

func (in PostInput) trimmed() PostInput {
	return PostInput{
		Title:    strings.TrimSpace(in.Title),
		Subtitle: strings.TrimSpace(in.Subtitle),
		ImgURL:   strings.TrimSpace(in.ImgURL),
		Body:     strings.TrimSpace(validation.SanitizeHTML(in.Body)),
	}
}

func (in PostInput) validate() error {
	if err := validation.ValidatePostFields(in.Title, in.Subtitle, in.ImgURL, in.Body); err != nil {
		return models.NewValidationError(err.Error())
	}
	return nil
}
