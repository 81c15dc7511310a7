package reports

import (
	"log/slog"
	"net/http"
	"time"

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

// MountRoutes attaches the report endpoints under the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Get("/export", h.Export)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Query().Get("type") {
	case "", "dashboard":
		dashboard, err := h.service.Dashboard(r.Context())
		if err != nil {
			h.logger.Error("build dashboard failed", "error", err)
			httpx.RespondError(w, err)
			return
		}
		httpx.OK(w, dashboard)
	case "sales":
		start, end, ok := reportRange(r)
		if !ok {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Range", "start and end must be YYYY-MM-DD")
			return
		}
		report, err := h.service.SalesReport(r.Context(), start, end)
		if err != nil {
			h.logger.Error("build sales report failed", "error", err)
			httpx.RespondError(w, err)
			return
		}
		httpx.OK(w, report)
	default:
		httpx.Problem(w, http.StatusBadRequest, "Invalid Type", "type must be dashboard or sales")
	}
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	start, end, ok := reportRange(r)
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Range", "start and end must be YYYY-MM-DD")
		return
	}
	report, err := h.service.SalesReport(r.Context(), start, end)
	if err != nil {
		h.logger.Error("export sales report failed", "error", err)
		httpx.RespondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="laporan-penjualan.txt"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(RenderSalesReport(report)))
}

func reportRange(r *http.Request) (time.Time, time.Time, bool) {
	start, err := time.Parse("2006-01-02", r.URL.Query().Get("start"))
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse("2006-01-02", r.URL.Query().Get("end"))
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
