package seed

import (
	"fmt"
	"io"
	"os"

	"inkwell/internal/validation"

	"gopkg.in/yaml.v3"
)

// Fixture is a hand-written data set loaded from YAML.
//
//	users:
//	  - username: Ada
//	    email: ada@example.com
//	    password: secret
//	posts:
//	  - title: Hello
//	    subtitle: First post
//	    img_url: https://example.com/a.jpg
//	    body: "<p>Hi</p>"
//	    author_email: ada@example.com
//	    comments:
//	      - author_email: ada@example.com
//	        body: Nice
type Fixture struct {
	Users []FixtureUser `yaml:"users"`
	Posts []FixturePost `yaml:"posts"`
}

type FixtureUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type FixturePost struct {
	Title       string           `yaml:"title"`
	Subtitle    string           `yaml:"subtitle"`
	ImgURL      string           `yaml:"img_url"`
	Body        string           `yaml:"body"`
	Date        string           `yaml:"date"`
	AuthorEmail string           `yaml:"author_email"`
	Comments    []FixtureComment `yaml:"comments"`
}

type FixtureComment struct {
	AuthorEmail string `yaml:"author_email"`
	Body        string `yaml:"body"`
}

// ParseFixture decodes a YAML fixture. Posts must name a fixture user.
func ParseFixture(r io.Reader) (*Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}

	if err := fx.Validate(); err != nil {
		return nil, err
	}
	return &fx, nil
}

// Validate checks required fields and that every author is a fixture user.
// Emails are compared in their stored, normalized form.
func (fx *Fixture) Validate() error {
	if fx == nil {
		return fmt.Errorf("fixture is nil")
	}
	emails := make(map[string]bool, len(fx.Users))
	for i, u := range fx.Users {
		if u.Email == "" || u.Username == "" {
			return fmt.Errorf("fixture user %d: username and email are required", i)
		}
		emails[validation.NormalizeEmail(u.Email)] = true
	}
	for i, p := range fx.Posts {
		if p.Title == "" {
			return fmt.Errorf("fixture post %d: title is required", i)
		}
		if !emails[validation.NormalizeEmail(p.AuthorEmail)] {
			return fmt.Errorf("fixture post %q: unknown author %q", p.Title, p.AuthorEmail)
		}
		for _, c := range p.Comments {
			if !emails[validation.NormalizeEmail(c.AuthorEmail)] {
				return fmt.Errorf("fixture post %q: unknown comment author %q", p.Title, c.AuthorEmail)
			}
		}
	}
	return nil
}

// LoadFixtureFile reads and parses a YAML fixture file.
func LoadFixtureFile(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseFixture(f)
}
