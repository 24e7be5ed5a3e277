package seed

import (
	"fmt"

	"inkwell/internal/auth"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/validation"

	"gorm.io/gorm"
)

// Options controls a generated run.
type Options struct {
	Users           int
	Posts           int
	CommentsPerPost int
	MaxDays         int
	Seed            int64
}

// Result counts what a run inserted.
type Result struct {
	Users    int
	Posts    int
	Comments int
}

// Seeder writes demo data through gorm.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

func NewSeeder(db *gorm.DB, seed int64) *Seeder {
	return &Seeder{db: db, factory: NewFactory(seed)}
}

// ClearAll removes every comment, post and user.
func (s *Seeder) ClearAll() error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Comment{}, &models.Post{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}

// Generate inserts fake users, posts and comments. All users share
// DefaultPassword.
func (s *Seeder) Generate(opts Options) (Result, error) {
	var res Result
	if opts.Users <= 0 {
		return res, nil
	}

	hash, err := auth.HashPassword(DefaultPassword)
	if err != nil {
		return res, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		users := make([]*models.User, 0, opts.Users)
		for i := 0; i < opts.Users; i++ {
			u := s.factory.BuildUser(func(u *models.User) { u.PasswordHash = hash })
			if err := tx.Create(u).Error; err != nil {
				return fmt.Errorf("create user %s: %w", u.Email, err)
			}
			users = append(users, u)
		}
		res.Users = len(users)

		for i := 0; i < opts.Posts; i++ {
			author := users[i%len(users)]
			p := s.factory.BuildPost(author, opts.MaxDays, func(p *models.Post) {
				p.Title = fmt.Sprintf("%s #%d", p.Title, i+1)
			})
			if err := tx.Create(p).Error; err != nil {
				return fmt.Errorf("create post %q: %w", p.Title, err)
			}
			res.Posts++

			for j := 0; j < opts.CommentsPerPost; j++ {
				c := s.factory.BuildComment(p, users[(i+j+1)%len(users)])
				if err := tx.Create(c).Error; err != nil {
					return fmt.Errorf("create comment: %w", err)
				}
				res.Comments++
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	middleware.Logger.Info("seeded demo data", "users", res.Users, "posts", res.Posts, "comments", res.Comments)
	return res, nil
}

// ApplyFixture inserts a fixture. Posts without a date are dated today.
func (s *Seeder) ApplyFixture(fx *Fixture) (Result, error) {
	if err := fx.Validate(); err != nil {
		return Result{}, err
	}
	var res Result
	err := s.db.Transaction(func(tx *gorm.DB) error {
		byEmail := make(map[string]*models.User, len(fx.Users))
		for _, fu := range fx.Users {
			password := fu.Password
			if password == "" {
				password = DefaultPassword
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			u := &models.User{Username: fu.Username, Email: validation.NormalizeEmail(fu.Email), PasswordHash: hash}
			if err := tx.Create(u).Error; err != nil {
				return fmt.Errorf("create user %s: %w", u.Email, err)
			}
			byEmail[u.Email] = u
			res.Users++
		}

		for _, fp := range fx.Posts {
			author := byEmail[validation.NormalizeEmail(fp.AuthorEmail)]
			date := fp.Date
			if date == "" {
				date = models.FormatDate(s.factory.now())
			}
			p := &models.Post{
				Title:       fp.Title,
				Subtitle:    fp.Subtitle,
				ImgURL:      fp.ImgURL,
				Body:        fp.Body,
				Date:        date,
				Author:      author.Username,
				AuthorEmail: author.Email,
			}
			if err := tx.Create(p).Error; err != nil {
				return fmt.Errorf("create post %q: %w", p.Title, err)
			}
			res.Posts++

			for _, fc := range fp.Comments {
				c := &models.Comment{
					Body:   fc.Body,
					Author: byEmail[validation.NormalizeEmail(fc.AuthorEmail)].Username,
					Date:   date,
					PostID: p.ID,
				}
				if err := tx.Create(c).Error; err != nil {
					return fmt.Errorf("create comment: %w", err)
				}
				res.Comments++
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}
