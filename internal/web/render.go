package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/coffeeshop/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"index", "enter", "registration", "lc", "worker_lc", "error"}

type pageData struct {
	User   *domain.User
	Items  []domain.Item
	Cart   domain.Cart
	Orders []domain.Order
	Email  string
	Error  string
	Notice string
}

type renderer struct {
	templates map[string]*template.Template
	logger    *slog.Logger
}

func newRenderer(logger *slog.Logger) (*renderer, error) {
	r := &renderer{templates: make(map[string]*template.Template, len(pages)), logger: logger}
	for _, page := range pages {
		tmpl, err := template.ParseFS(templateFS,
			"templates/layout.html",
			"templates/cart.html",
			"templates/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		r.templates[page] = tmpl
	}
	return r, nil
}

// render buffers the page so a template failure never leaves a half-written
// response.
func (r *renderer) render(w http.ResponseWriter, status int, page string, data pageData) {
	tmpl, ok := r.templates[page]
	if !ok {
		r.logger.Error("unknown page", "page", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.logger.Error("failed to render page", "error", err, "page", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Error("failed to write page", "error", err, "page", page)
	}
}
