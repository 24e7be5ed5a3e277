// Package views embeds the HTML templates and static assets.
package views

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"inkwell/internal/validation"

	"github.com/gofiber/template/html/v2"
)

// Layout wraps every page.
const Layout = "layouts/main"

//go:embed templates
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// New returns a template engine over the embedded templates.
func New() *html.Engine {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	// Post bodies are HTML. They are sanitized on save and again here so
	// rows written before sanitizing existed cannot carry scripts.
	engine.AddFunc("safe", func(s string) template.HTML {
		return template.HTML(validation.SanitizeHTML(s)) //nolint:gosec
	})
	return engine
}

// Static returns the stylesheet and other assets served under /static.
func Static() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
