// Package server contains the HTTP handlers and routing for the blog.
package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"inkwell/internal/auth"
	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/featureflags"
	"inkwell/internal/mail"
	"inkwell/internal/middleware"
	"inkwell/internal/observability"
	"inkwell/internal/repository"
	"inkwell/internal/service"
	"inkwell/internal/views"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	cache          *cache.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	sessions       *auth.SessionManager
	featureFlags   *featureflags.Manager
	mailer         mail.Sender
	admins         map[string]struct{}
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	userService    *service.UserService
	postService    *service.PostService
	commentService *service.CommentService
	contactService *service.ContactService
}

// NewServer connects the database, Redis and the mail relay described by cfg.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	return NewServerWithDeps(cfg, db, cache.Connect(cfg.RedisURL), mail.NewSender(cfg))
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// c may be nil, in which case caching and session revocation are disabled.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, c *cache.Client, mailer mail.Sender) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("server: config and database are required")
	}
	if mailer == nil {
		mailer = mail.LogSender{}
	}

	s := &Server{
		config:         cfg,
		db:             db,
		cache:          c,
		promMiddleware: observability.InitMetrics("inkwell"),
		sessions:       auth.NewSessionManager(cfg.SessionSecret, cfg.SessionTTL()),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		mailer:         mailer,
		admins:         make(map[string]struct{}),
		userRepo:       repository.NewUserRepository(db),
		postRepo:       repository.NewPostRepository(db, c),
		commentRepo:    repository.NewCommentRepository(db),
	}
	for _, email := range cfg.AdminEmailList() {
		s.admins[email] = struct{}{}
	}

	s.userService = service.NewUserService(s.userRepo, s.featureFlags)
	s.postService = service.NewPostService(s.postRepo, s.featureFlags, s.isAdmin)
	s.commentService = service.NewCommentService(s.commentRepo, s.postRepo, s.featureFlags)
	s.contactService = service.NewContactService(s.mailer, cfg.SMTPFrom, cfg.ContactRecipient)

	return s, nil
}

// NewApp builds the fiber application with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Inkwell",
		Views:        views.New(),
		ViewsLayout:  views.Layout,
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Identity must be known before the context middleware copies it into
	// the request context for logging.
	app.Use(middleware.LoadIdentity(s.resolveSession))
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Post images are hot-linked from other origins.
	app.Use(helmet.New(helmet.Config{
		CrossOriginEmbedderPolicy: "unsafe-none",
	}))

	app.Use(middleware.StructuredLogger())

	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:" + csrfFormField,
		CookieName:     csrfCookieName,
		CookieSameSite: "Lax",
		CookieHTTPOnly: true,
		CookieSecure:   s.config.IsProduction(),
		Expiration:     s.config.SessionTTL(),
		ContextKey:     csrfContextKey,
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Use("/static", filesystem.New(filesystem.Config{
		Root:   views.Static(),
		MaxAge: 3600,
	}))

	limiter := middleware.NewLimiter(s.cache.Redis(), s.config.RateLimitEnabled())

	app.Get("/", s.Home)
	app.Get("/about", s.About)
	app.Get("/contact", s.ContactPage)
	app.Post("/contact", limiter.Handler(middleware.Rule{Name: "contact", Limit: 5, Window: 10 * time.Minute}), s.Contact)

	app.Get("/register", s.RegisterPage)
	app.Post("/register", limiter.Handler(middleware.Rule{Name: "register", Limit: 3, Window: 10 * time.Minute}), s.Register)
	app.Get("/login", s.LoginPage)
	app.Post("/login", limiter.Handler(middleware.Rule{Name: "login", Limit: 10, Window: 5 * time.Minute}), s.Login)
	app.Get("/logout", s.SessionRequired(), s.Logout)

	app.Get("/post/:id", s.ShowPost)
	app.Post("/post/:id", s.SessionRequired(), s.AddComment)

	app.Get("/new-post", s.SessionRequired(), s.NewPostPage)
	app.Post("/new-post", s.SessionRequired(), s.CreatePost)
	app.Get("/edit-post/:id", s.SessionRequired(), s.EditPostPage)
	app.Post("/edit-post/:id", s.SessionRequired(), s.UpdatePost)
	app.Get("/delete/:id", s.DeletePost)

	app.Get("/account/", s.SessionRequired(), s.Account)
	app.Post("/account/", s.SessionRequired(), s.Account)

	app.Get("/all-user-in-db", s.AdminRequired(), s.AllUsers)
}

// resolveSession verifies a session cookie and rejects revoked sessions.
func (s *Server) resolveSession(ctx context.Context, token string) (*auth.Identity, error) {
	id, err := s.sessions.Parse(token)
	if err != nil {
		return nil, err
	}
	if s.cache.IsSessionRevoked(ctx, id.SessionID) {
		return nil, auth.ErrInvalidSession
	}
	return id, nil
}

func (s *Server) isAdmin(email string) bool {
	_, ok := s.admins[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// Start starts the server
func (s *Server) Start() error {
	app := s.NewApp()
	middleware.Logger.Info("server starting", "port", s.config.Port, "env", s.config.Env)
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops the listener and releases the database and Redis connections.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
	}
	if err := database.Close(s.db); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	if err := s.cache.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close redis: %w", err))
	}

	middleware.Logger.Info("server shutdown complete")
	return errors.Join(errs...)
}
