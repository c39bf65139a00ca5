// Package web renders the server-side HTML pages. Layout and styling are a
// frontend concern; these templates are deliberately bare.
package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Renderer executes the embedded page templates.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	t, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: t}, nil
}

// PageData is the data handed to every page template.
type PageData struct {
	Username string
	Error    string
	Flash    string
	Data     any
}

// Render writes the named template with status. Template failures surface as
// a plain 500; by then headers may already be gone, so we just log.
func (r *Renderer) Render(w http.ResponseWriter, status int, name string, data PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := r.templates.ExecuteTemplate(w, name, data); err != nil {
		log.Error().Err(err).Str("template", name).Msg("Failed to render template")
	}
}
