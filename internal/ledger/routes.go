package ledger

import (
	"github.com/go-chi/chi/v5"
)

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/overdue", h.Overdue)
	r.Get("/{id}/credits", h.Credits)
	r.Get("/{id}/payments", h.Payments)
	r.Post("/{id}/payments", h.RecordPayment)
}
