package sales

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/warungpos/warungpos/internal/catalog"
	"github.com/warungpos/warungpos/internal/ledger"
	"github.com/warungpos/warungpos/internal/platform/httpx"
	"github.com/warungpos/warungpos/internal/shared"
)

// HeaderSource supplies the store profile printed on receipts.
type HeaderSource interface {
	ReceiptHeader(ctx context.Context) (ReceiptHeader, error)
}

type Handler struct {
	logger   *slog.Logger
	service  *Service
	catalog  CatalogPort
	profile  HeaderSource
	validate *validator.Validate
}

// NewHandler builds the sales HTTP handler. profile may be nil; receipts then
// print without a store header.
func NewHandler(logger *slog.Logger, service *Service, catalogPort CatalogPort, profile HeaderSource) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		catalog:  catalogPort,
		profile:  profile,
		validate: validator.New(),
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	start, end, ok := dateRange(r)

	var (
		sales []Sale
		err   error
	)
	if ok {
		sales, err = h.service.ListByDateRange(r.Context(), start, end)
	} else {
		sales, err = h.service.All(r.Context())
	}
	if err != nil {
		h.logger.Error("list sales failed", "error", err)
		h.respondError(w, err)
		return
	}
	if sales == nil {
		sales = []Sale{}
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	pg := shared.NewPagination(page, perPage, len(sales))
	offset := (pg.Page - 1) * pg.PerPage
	if offset > len(sales) {
		offset = len(sales)
	}
	limit := offset + pg.PerPage
	if limit > len(sales) {
		limit = len(sales)
	}
	httpx.OKPaged(w, sales[offset:limit], pg)
}

func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	var req CommitSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	cart := &Cart{}
	for _, item := range req.Items {
		product, err := h.catalog.Get(r.Context(), item.ProductID)
		if err != nil {
			h.respondError(w, err)
			return
		}
		if err := cart.AddLine(product, item.Quantity); err != nil {
			h.respondError(w, err)
			return
		}
	}

	sale, err := h.service.Commit(r.Context(), cart, CommitInput{
		DiscountPercent: req.DiscountPercent,
		PaymentMethod:   PaymentMethod(req.PaymentMethod),
		CustomerID:      req.CustomerID,
		IdempotencyKey:  r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		h.logger.Error("commit sale failed", "error", err)
		h.respondError(w, err)
		return
	}
	httpx.OK(w, sale)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "sale id must be numeric")
		return
	}
	sale, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.OK(w, sale)
}

func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "sale id must be numeric")
		return
	}
	sale, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	var header ReceiptHeader
	if h.profile != nil {
		header, err = h.profile.ReceiptHeader(r.Context())
		if err != nil {
			h.logger.Warn("load receipt header failed", "error", err)
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(RenderReceipt(header, sale)))
}

func dateRange(r *http.Request) (time.Time, time.Time, bool) {
	q := r.URL.Query()
	startRaw := q.Get("start_date")
	if startRaw == "" {
		startRaw = q.Get("start")
	}
	endRaw := q.Get("end_date")
	if endRaw == "" {
		endRaw = q.Get("end")
	}
	if startRaw == "" || endRaw == "" {
		return time.Time{}, time.Time{}, false
	}
	start, err := time.Parse("2006-01-02", startRaw)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	end, err := time.Parse("2006-01-02", endRaw)
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	// end is inclusive on the wire, exclusive in the repository.
	return start, end.AddDate(0, 0, 1), true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, catalog.ErrNotFound), errors.Is(err, ledger.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrEmptyCart), errors.Is(err, ErrInvalidDiscount),
		errors.Is(err, ErrInvalidPaymentMethod), errors.Is(err, ErrCreditRequiresCustomer),
		errors.Is(err, ledger.ErrInvalidAmount):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, catalog.ErrInsufficientStock):
		httpx.Problem(w, http.StatusBadRequest, "Insufficient Stock", err.Error())
	case errors.Is(err, ledger.ErrCreditLimitExceeded):
		httpx.Problem(w, http.StatusBadRequest, "Credit Limit Exceeded", err.Error())
	case errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Problem(w, http.StatusConflict, "Duplicate Request", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
