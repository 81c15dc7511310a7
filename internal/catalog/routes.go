package catalog

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/low-stock", h.LowStock)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}
