package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/warungpos/warungpos/internal/catalog"
	"github.com/warungpos/warungpos/internal/ledger"
	"github.com/warungpos/warungpos/internal/observability"
	"github.com/warungpos/warungpos/internal/reports"
	"github.com/warungpos/warungpos/internal/sales"
	"github.com/warungpos/warungpos/internal/settings"
	"github.com/warungpos/warungpos/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	CatalogHandler  *catalog.Handler
	LedgerHandler   *ledger.Handler
	SalesHandler    *sales.Handler
	ReportsHandler  *reports.Handler
	SettingsHandler *settings.Handler
	JobHandler      *jobs.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with WarungPOS defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/products", params.CatalogHandler.MountRoutes)
	r.Route("/customers", params.LedgerHandler.MountRoutes)
	r.Route("/sales", params.SalesHandler.MountRoutes)
	r.Route("/reports", params.ReportsHandler.MountRoutes)
	params.SettingsHandler.MountRoutes(r)
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
