package service

import (
	"context"
	"errors"
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

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	flags       *featureflags.Manager
	now         func() time.Time
}

type AddCommentInput struct {
	Identity *auth.Identity
	PostID   uint
	Body     string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	flags *featureflags.Manager,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		flags:       flags,
		now:         time.Now,
	}
}

// AddComment stores a comment by the session user on an existing post.
func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	ctx, span := observability.StartSpan(ctx, "service.comment", "add",
		attribute.Int("post.id", int(in.PostID)))
	defer span.End()

	if !in.Identity.Authenticated() {
		return nil, models.NewUnauthorizedError(models.MsgLoginRequired)
	}
	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}

	body := strings.TrimSpace(in.Body)
	if err := validation.ValidateComment(body); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	comment := &models.Comment{
		Body:   body,
		Author: in.Identity.Username,
		Date:   models.FormatDate(s.now()),
		PostID: in.PostID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		span.SetError(err)
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.ErrCodeValidation {
			return nil, appErr
		}
		return nil, models.NewInternalErrorWithMessage(err, models.MsgCommentFailed)
	}
	observability.ContentWrites.WithLabelValues("comment", "create").Inc()
	return comment, nil
}

// ListForPost returns the comments shown on a post page: every comment, or
// only the post's own when scoped_comments is on for the viewer.
func (s *CommentService) ListForPost(ctx context.Context, postID, viewerID uint) ([]*models.Comment, error) {
	if s.flags.Enabled(featureflags.ScopedComments, viewerID) {
		return s.commentRepo.ListByPost(ctx, postID)
	}
	return s.commentRepo.List(ctx)
}
