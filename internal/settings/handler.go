package settings

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warungpos/warungpos/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches the settings and backup endpoints at the router root.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/settings", h.Get)
	r.Put("/settings", h.Update)
	r.Get("/backup", h.Backup)
	r.Post("/backup/restore", h.Restore)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	current, err := h.service.Get(r.Context())
	if err != nil {
		h.logger.Error("load settings failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, current)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in Settings
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	saved, err := h.service.Update(r.Context(), in)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, saved)
}

func (h *Handler) Backup(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.Backup(r.Context())
	if err != nil {
		h.logger.Error("export backup failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="warungpos-backup.json"`)
	httpx.JSON(w, http.StatusOK, doc)
}

func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	var doc BackupDocument
	if err := httpx.DecodeJSON(r, &doc); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	if err := h.service.Restore(r.Context(), doc); err != nil {
		h.logger.Error("restore backup failed", "error", err)
		h.respondError(w, err)
		return
	}
	httpx.OKMessage(w, "Backup restored successfully")
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidBackup):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
