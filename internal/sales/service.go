package sales

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/warungpos/warungpos/internal/catalog"
	"github.com/warungpos/warungpos/internal/ledger"
	"github.com/warungpos/warungpos/internal/shared"
)

// CatalogPort is the slice of the catalog service checkout needs.
type CatalogPort interface {
	Get(ctx context.Context, id int64) (catalog.Product, error)
	ReserveStock(ctx context.Context, id int64, quantity int) (catalog.Product, error)
	ReleaseStock(ctx context.Context, id int64, quantity int) (catalog.Product, error)
}

// LedgerPort is the slice of the ledger service checkout needs.
type LedgerPort interface {
	Get(ctx context.Context, id int64) (ledger.Customer, error)
	ExtendCredit(ctx context.Context, input ledger.ExtendCreditInput) (ledger.CreditTransaction, error)
}

// IdempotencyPort guards retried commits.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Enqueuer schedules follow-up work after a commit.
type Enqueuer interface {
	EnqueueCacheWarmup(ctx context.Context) error
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service owns the checkout state machine. Commits are serialized through a
// single mutex: stock and debt invariants then need no cross-service
// transaction, only compensation on the failing step.
type Service struct {
	store    Store
	catalog  CatalogPort
	ledger   LedgerPort
	idem     IdempotencyPort
	enqueuer Enqueuer
	audit    AuditPort
	logger   *slog.Logger

	commitMu sync.Mutex
	now      func() time.Time
}

// ServiceParams groups Service dependencies. Idem, Enqueuer and Audit may be
// nil.
type ServiceParams struct {
	Store    Store
	Catalog  CatalogPort
	Ledger   LedgerPort
	Idem     IdempotencyPort
	Enqueuer Enqueuer
	Audit    AuditPort
	Logger   *slog.Logger
}

// NewService builds Service.
func NewService(params ServiceParams) *Service {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    params.Store,
		catalog:  params.Catalog,
		ledger:   params.Ledger,
		idem:     params.Idem,
		enqueuer: params.Enqueuer,
		audit:    params.Audit,
		logger:   logger,
		now:      time.Now,
	}
}

// Commit turns a cart into an immutable Sale. Steps, in order: validate,
// reserve stock per line, post credit when paying on account, persist. A
// failure at any step compensates everything done before it, so no partial
// sale is ever observable.
func (s *Service) Commit(ctx context.Context, cart *Cart, input CommitInput) (Sale, error) {
	if cart == nil || cart.Empty() {
		return Sale{}, ErrEmptyCart
	}
	if !input.PaymentMethod.Valid() {
		return Sale{}, fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, input.PaymentMethod)
	}
	totals, err := cart.Totals(input.DiscountPercent)
	if err != nil {
		return Sale{}, err
	}
	if input.PaymentMethod == PaymentCredit && input.CustomerID == nil {
		return Sale{}, ErrCreditRequiresCustomer
	}

	s.commitMu.Lock()
	defer s.commitMu.Unlock()

	if input.IdempotencyKey != "" && s.idem != nil {
		if err := s.idem.CheckAndInsert(ctx, input.IdempotencyKey, "sales"); err != nil {
			return Sale{}, err
		}
	}
	fail := func(err error) (Sale, error) {
		if input.IdempotencyKey != "" && s.idem != nil {
			_ = s.idem.Delete(ctx, input.IdempotencyKey)
		}
		return Sale{}, err
	}

	lines := cart.Lines()
	reserved := 0
	release := func() {
		for i := reserved - 1; i >= 0; i-- {
			if _, err := s.catalog.ReleaseStock(ctx, lines[i].ProductID, lines[i].Quantity); err != nil {
				s.logger.Error("release stock after failed commit",
					slog.Int64("product_id", lines[i].ProductID), slog.Any("error", err))
			}
		}
	}
	for _, line := range lines {
		if _, err := s.catalog.ReserveStock(ctx, line.ProductID, line.Quantity); err != nil {
			release()
			return fail(fmt.Errorf("reserve %s: %w", line.ProductName, err))
		}
		reserved++
	}

	code := saleCode()
	var customerName string
	if input.CustomerID != nil {
		customer, err := s.ledger.Get(ctx, *input.CustomerID)
		if err != nil {
			release()
			return fail(fmt.Errorf("resolve customer: %w", err))
		}
		customerName = customer.Name
	}
	if input.PaymentMethod == PaymentCredit {
		_, err := s.ledger.ExtendCredit(ctx, ledger.ExtendCreditInput{
			CustomerID:  *input.CustomerID,
			Amount:      totals.Total,
			Description: code,
		})
		if err != nil {
			release()
			return fail(err)
		}
	}

	sale := Sale{
		Code:            code,
		CustomerID:      input.CustomerID,
		CustomerName:    customerName,
		Subtotal:        totals.Subtotal,
		DiscountPercent: input.DiscountPercent,
		DiscountAmount:  totals.DiscountAmount,
		Total:           totals.Total,
		PaymentMethod:   input.PaymentMethod,
		CreatedAt:       s.now(),
	}
	for _, line := range lines {
		sale.Items = append(sale.Items, SaleItem{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			LineTotal:   float64(line.Quantity) * line.UnitPrice,
		})
	}

	sale, err = s.store.Create(ctx, sale)
	if err != nil {
		// Credit already posted cannot be unwound here; log loudly so the
		// ledger can be reconciled by hand.
		release()
		if input.PaymentMethod == PaymentCredit {
			s.logger.Error("sale persist failed after credit posted",
				slog.String("code", code), slog.Any("error", err))
		}
		return fail(fmt.Errorf("persist sale: %w", err))
	}

	s.recordAudit(ctx, "sales:commit", sale)
	if s.enqueuer != nil {
		if err := s.enqueuer.EnqueueCacheWarmup(ctx); err != nil {
			s.logger.Warn("enqueue cache warmup", slog.Any("error", err))
		}
	}
	return sale, nil
}

// Get returns one sale with its items.
func (s *Service) Get(ctx context.Context, id int64) (Sale, error) {
	if id <= 0 {
		return Sale{}, ErrNotFound
	}
	return s.store.Get(ctx, id)
}

// ListByDateRange returns sales with created_at in [start, end).
func (s *Service) ListByDateRange(ctx context.Context, start, end time.Time) ([]Sale, error) {
	return s.store.ListByDateRange(ctx, start, end)
}

// All returns every sale, newest first.
func (s *Service) All(ctx context.Context) ([]Sale, error) {
	return s.store.All(ctx)
}

func (s *Service) recordAudit(ctx context.Context, action string, sale Sale) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "sale",
		EntityID: sale.Code,
		Meta: map[string]any{
			"total":          sale.Total,
			"payment_method": string(sale.PaymentMethod),
			"items":          len(sale.Items),
		},
	})
}

func saleCode() string {
	return "POS-" + uuid.NewString()[:8]
}
