package sales

import "github.com/go-chi/chi/v5"

// MountRoutes attaches the sales endpoints under the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Commit)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/receipt", h.Receipt)
}
