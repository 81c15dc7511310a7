package ledger

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/warungpos/warungpos/internal/platform/httpx"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.Search(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.logger.Error("search customers failed", "error", err)
		h.respondError(w, err)
		return
	}
	if customers == nil {
		customers = []Customer{}
	}
	httpx.OK(w, customers)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	customer, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create customer failed", "error", err)
		h.respondError(w, err)
		return
	}
	httpx.OK(w, customer)
}

func (h *Handler) Credits(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "customer id must be numeric")
		return
	}

	credits, err := h.service.CreditsFor(r.Context(), id)
	if err != nil {
		h.logger.Error("list credits failed", "error", err, "customer_id", id)
		h.respondError(w, err)
		return
	}
	if credits == nil {
		credits = []CreditTransaction{}
	}
	httpx.OK(w, credits)
}

func (h *Handler) Payments(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "customer id must be numeric")
		return
	}

	payments, err := h.service.PaymentsFor(r.Context(), id)
	if err != nil {
		h.logger.Error("list payments failed", "error", err, "customer_id", id)
		h.respondError(w, err)
		return
	}
	if payments == nil {
		payments = []Payment{}
	}
	httpx.OK(w, payments)
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "customer id must be numeric")
		return
	}

	var req RecordPaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	payment, err := h.service.RecordPayment(r.Context(), id, req)
	if err != nil {
		h.logger.Error("record payment failed", "error", err, "customer_id", id)
		h.respondError(w, err)
		return
	}
	httpx.OK(w, payment)
}

func (h *Handler) Overdue(w http.ResponseWriter, r *http.Request) {
	var asOf time.Time
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Date", "as_of must be RFC3339")
			return
		}
		asOf = parsed
	}

	credits, err := h.service.ListOverdue(r.Context(), asOf)
	if err != nil {
		h.logger.Error("list overdue failed", "error", err)
		h.respondError(w, err)
		return
	}
	if credits == nil {
		credits = []CreditTransaction{}
	}
	httpx.OK(w, credits)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation), errors.Is(err, ErrInvalidAmount):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrCreditLimitExceeded):
		httpx.Problem(w, http.StatusBadRequest, "Credit Limit Exceeded", err.Error())
	case errors.Is(err, ErrExceedsDebt):
		httpx.Problem(w, http.StatusBadRequest, "Exceeds Debt", err.Error())
	default:
		httpx.RespondError(w, err)
	}
}
