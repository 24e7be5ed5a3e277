// Package service holds the blog's business rules between handlers and repositories.
package service

import (
	"context"
	"errors"
	"strings"

	"inkwell/internal/auth"
	"inkwell/internal/featureflags"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type UserService struct {
	userRepo repository.UserRepository
	flags    *featureflags.Manager
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func NewUserService(userRepo repository.UserRepository, flags *featureflags.Manager) *UserService {
	return &UserService{userRepo: userRepo, flags: flags}
}

// Register creates an account. A taken email is a validation error; any
// other failure is reported with the generic registration message.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	ctx, span := observability.StartSpan(ctx, "service.user", "register")
	defer span.End()

	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)

	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		observability.AuthAttempts.WithLabelValues("register", "error").Inc()
		span.SetError(err)
		return nil, models.NewInternalErrorWithMessage(err, models.MsgRegistrationFailed)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if s.flags.Enabled(featureflags.LegacyPlaintextPasswords, 0) {
		user.Password = in.Password
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.ErrCodeValidation {
			observability.AuthAttempts.WithLabelValues("register", "rejected").Inc()
			return nil, appErr
		}
		observability.AuthAttempts.WithLabelValues("register", "error").Inc()
		span.SetError(err)
		return nil, models.NewInternalErrorWithMessage(err, models.MsgRegistrationFailed)
	}

	observability.AuthAttempts.WithLabelValues("register", "success").Inc()
	return user, nil
}

// Authenticate checks an email/password pair. Legacy pbkdf2 hashes are
// upgraded to bcrypt after a successful check.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	ctx, span := observability.StartSpan(ctx, "service.user", "authenticate")
	defer span.End()

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		span.SetError(err)
		return nil, err
	}
	if user == nil {
		observability.AuthAttempts.WithLabelValues("login", "unknown_email").Inc()
		return nil, models.NewUnauthorizedError(models.MsgNoAccount)
	}
	span.SetAttributes(attribute.Int("user.id", int(user.ID)))

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "stored password hash could not be checked",
			"user_id", user.ID, "error", err)
	}
	if !ok {
		observability.AuthAttempts.WithLabelValues("login", "bad_password").Inc()
		return nil, models.NewUnauthorizedError(models.MsgIncorrectPassword)
	}

	if auth.NeedsRehash(user.PasswordHash) {
		s.upgradeHash(ctx, user, password)
	}

	observability.AuthAttempts.WithLabelValues("login", "success").Inc()
	return user, nil
}

func (s *UserService) upgradeHash(ctx context.Context, user *models.User, password string) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "failed to rehash legacy password", "user_id", user.ID, "error", err)
		return
	}
	if err := s.userRepo.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to store upgraded password hash", "user_id", user.ID, "error", err)
		return
	}
	user.PasswordHash = hash
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

func normalizeEmail(email string) string {
	return validation.NormalizeEmail(email)
}
