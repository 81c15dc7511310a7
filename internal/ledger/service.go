package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/warungpos/warungpos/internal/shared"
)

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates customer and credit ledger operations. It is the only
// writer of Customer.CurrentDebt.
type Service struct {
	store Store
	audit AuditPort
	now   func() time.Time
}

// NewService builds Service.
func NewService(store Store, audit AuditPort) *Service {
	return &Service{store: store, audit: audit, now: time.Now}
}

// Search lists customers matching name or phone substring.
func (s *Service) Search(ctx context.Context, query string) ([]Customer, error) {
	return s.store.Search(ctx, strings.TrimSpace(query))
}

// Get fetches one customer.
func (s *Service) Get(ctx context.Context, id int64) (Customer, error) {
	if id <= 0 {
		return Customer{}, ErrNotFound
	}
	return s.store.Get(ctx, id)
}

// Create registers a customer. CurrentDebt always starts at zero regardless
// of input.
func (s *Service) Create(ctx context.Context, req CreateCustomerRequest) (Customer, error) {
	if strings.TrimSpace(req.Name) == "" {
		return Customer{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if req.CreditLimit < 0 {
		return Customer{}, fmt.Errorf("%w: credit limit must be >= 0", ErrValidation)
	}

	customer, err := s.store.Create(ctx, Customer{
		Name:        strings.TrimSpace(req.Name),
		Phone:       req.Phone,
		Address:     req.Address,
		CreditLimit: req.CreditLimit,
	})
	if err != nil {
		return Customer{}, err
	}
	s.recordAudit(ctx, "ledger:create-customer", customer.ID, map[string]any{"name": customer.Name})
	return customer, nil
}

// ExtendCredit posts a credit transaction and raises the customer's debt in
// one transaction. Fails with ErrCreditLimitExceeded before any state is
// mutated when debt+amount would pass the limit.
func (s *Service) ExtendCredit(ctx context.Context, input ExtendCreditInput) (CreditTransaction, error) {
	if input.Amount <= 0 {
		return CreditTransaction{}, ErrInvalidAmount
	}

	var credit CreditTransaction
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		customer, err := tx.GetCustomerForUpdate(ctx, input.CustomerID)
		if err != nil {
			return err
		}
		if customer.CurrentDebt+input.Amount > customer.CreditLimit {
			return fmt.Errorf("%w: debt %.0f + %.0f over limit %.0f",
				ErrCreditLimitExceeded, customer.CurrentDebt, input.Amount, customer.CreditLimit)
		}

		issuedAt := s.now()
		dueDate := input.DueDate
		if dueDate.IsZero() {
			dueDate = issuedAt.AddDate(0, 1, 0)
		}
		credit, err = tx.InsertCredit(ctx, CreditTransaction{
			CustomerID:  input.CustomerID,
			Amount:      input.Amount,
			Description: input.Description,
			IssuedAt:    issuedAt,
			DueDate:     dueDate,
			Status:      CreditStatusUnpaid,
		})
		if err != nil {
			return err
		}
		return tx.SetDebt(ctx, customer.ID, customer.CurrentDebt+input.Amount)
	})
	if err != nil {
		return CreditTransaction{}, err
	}

	s.recordAudit(ctx, "ledger:extend-credit", input.CustomerID, map[string]any{"amount": input.Amount})
	return credit, nil
}

// RecordPayment lowers the customer's debt and appends a payment record.
// Payments settle the aggregate balance; unpaid credit transactions are
// marked paid oldest-due-first as the remaining debt no longer covers them.
func (s *Service) RecordPayment(ctx context.Context, customerID int64, req RecordPaymentRequest) (Payment, error) {
	if req.Amount <= 0 {
		return Payment{}, ErrInvalidAmount
	}

	var payment Payment
	err := s.store.WithTx(ctx, func(ctx context.Context, tx TxStore) error {
		customer, err := tx.GetCustomerForUpdate(ctx, customerID)
		if err != nil {
			return err
		}
		if req.Amount > customer.CurrentDebt {
			return fmt.Errorf("%w: payment %.0f over debt %.0f", ErrExceedsDebt, req.Amount, customer.CurrentDebt)
		}

		newDebt := customer.CurrentDebt - req.Amount
		payment, err = tx.InsertPayment(ctx, Payment{
			CustomerID: customerID,
			Amount:     req.Amount,
			Note:       req.Note,
			PaidAt:     s.now(),
		})
		if err != nil {
			return err
		}
		if err := tx.SetDebt(ctx, customerID, newDebt); err != nil {
			return err
		}
		return s.allocate(ctx, tx, customerID, newDebt)
	})
	if err != nil {
		return Payment{}, err
	}

	s.recordAudit(ctx, "ledger:record-payment", customerID, map[string]any{"amount": req.Amount})
	return payment, nil
}

// allocate flips unpaid credit transactions to paid, oldest due date first,
// for the portion of credit no longer backed by outstanding debt.
func (s *Service) allocate(ctx context.Context, tx TxStore, customerID int64, remainingDebt float64) error {
	unpaid, err := tx.UnpaidByDueDate(ctx, customerID)
	if err != nil {
		return err
	}
	var unpaidTotal float64
	for _, t := range unpaid {
		unpaidTotal += t.Amount
	}
	covered := unpaidTotal - remainingDebt
	for _, t := range unpaid {
		if covered < t.Amount {
			break
		}
		if err := tx.MarkCreditPaid(ctx, t.ID); err != nil {
			return err
		}
		covered -= t.Amount
	}
	return nil
}

// ListOverdue returns unpaid credit transactions past due as of the given time.
func (s *Service) ListOverdue(ctx context.Context, asOf time.Time) ([]CreditTransaction, error) {
	if asOf.IsZero() {
		asOf = s.now()
	}
	return s.store.ListOverdue(ctx, asOf)
}

// TotalOutstanding sums current debt across customers for the dashboard.
func (s *Service) TotalOutstanding(ctx context.Context) (float64, error) {
	return s.store.TotalOutstanding(ctx)
}

// CreditsFor lists a customer's credit transactions.
func (s *Service) CreditsFor(ctx context.Context, customerID int64) ([]CreditTransaction, error) {
	if _, err := s.store.Get(ctx, customerID); err != nil {
		return nil, err
	}
	return s.store.CreditsByCustomer(ctx, customerID)
}

// PaymentsFor lists a customer's payments.
func (s *Service) PaymentsFor(ctx context.Context, customerID int64) ([]Payment, error) {
	if _, err := s.store.Get(ctx, customerID); err != nil {
		return nil, err
	}
	return s.store.PaymentsByCustomer(ctx, customerID)
}

// All lists every active customer, used by backup export.
func (s *Service) All(ctx context.Context) ([]Customer, error) {
	return s.store.All(ctx)
}

func (s *Service) recordAudit(ctx context.Context, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "customer",
		EntityID: fmt.Sprintf("%d", id),
		Meta:     meta,
	})
}
