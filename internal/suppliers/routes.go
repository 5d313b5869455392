package suppliers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/suppliers-api/internal/platform/httpx"
)

// MountRoutes sends every method on the base path and everything below it
// to the handler, which does its own dispatch. chi answers verbs outside its
// method table before matching routes, so those also go through
// methodNotAllowed.
func (h *Handler) MountRoutes(r chi.Router) {
	r.MethodNotAllowed(h.methodNotAllowed)
	if h.basePath == "" {
		r.Handle("/", h)
		r.Handle("/*", h)
		return
	}
	r.Handle(h.basePath, h)
	r.Handle(h.basePath+"/*", h)
}

// methodNotAllowed keeps the envelope on router-level 405s. Supplier paths
// get the full handler so authentication still runs first.
func (h *Handler) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	if h.owns(r.URL.Path) {
		h.ServeHTTP(w, r)
		return
	}
	httpx.Error(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
}

func (h *Handler) owns(path string) bool {
	if h.basePath == "" {
		return true
	}
	return path == h.basePath || strings.HasPrefix(path, h.basePath+"/")
}
