package views

import (
	"log/slog"
	"net/http"

	"github.com/a-h/templ"
)

// Render writes a page. Once the body has started a failure can only be logged.
func Render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		slog.Error("failed to render page", "path", r.URL.Path, "error", err)
	}
}
