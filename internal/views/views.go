package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var files embed.FS

// Page is the data every template receives.
type Page struct {
	Title       string
	CurrentUser string
	Flashes     []string
	CSRFToken   string
	Error       string
	Data        interface{}
}

// pages lists the files each page is parsed from. Every set defines "layout".
var pages = map[string][]string{
	"hello.html":     {"layout.html", "hello.html"},
	"counter.html":   {"layout.html", "counter.html"},
	"home.html":      {"layout.html", "nav.html", "home.html"},
	"register.html":  {"layout.html", "nav.html", "register.html"},
	"login.html":     {"layout.html", "nav.html", "login.html"},
	"profile.html":   {"layout.html", "nav.html", "profile.html"},
	"users.html":     {"layout.html", "nav.html", "users.html"},
	"user_list.html": {"layout.html", "nav.html", "user_list.html"},
	"error.html":     {"layout.html", "nav.html", "error.html"},
}

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer parses every page up front so a broken template fails at
// startup rather than on first request.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for name, set := range pages {
		patterns := make([]string, len(set))
		for i, f := range set {
			patterns[i] = "templates/" + f
		}
		t, err := template.ParseFS(files, patterns...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		r.templates[name] = t
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
