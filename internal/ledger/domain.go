package ledger

import (
	"errors"
	"time"
)

// CreditStatus enumerates credit transaction states.
type CreditStatus string

const (
	// CreditStatusUnpaid marks credit that is still owed.
	CreditStatusUnpaid CreditStatus = "unpaid"
	// CreditStatusPaid marks credit covered by payments.
	CreditStatusPaid CreditStatus = "paid"
)

// Customer carries the credit standing of a registered buyer. CurrentDebt is
// only mutated through ExtendCredit and RecordPayment.
type Customer struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	CreditLimit float64   `json:"credit_limit"`
	CurrentDebt float64   `json:"current_debt"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AvailableCredit returns how much additional credit the customer can take.
func (c Customer) AvailableCredit() float64 {
	return c.CreditLimit - c.CurrentDebt
}

// CreditTransaction records credit extended to a customer.
type CreditTransaction struct {
	ID          int64        `json:"id"`
	CustomerID  int64        `json:"customer_id"`
	Amount      float64      `json:"amount"`
	Description string       `json:"description"`
	IssuedAt    time.Time    `json:"issued_at"`
	DueDate     time.Time    `json:"due_date"`
	Status      CreditStatus `json:"status"`
}

// IsOverdue reports whether the transaction is unpaid past its due date.
func (t CreditTransaction) IsOverdue(asOf time.Time) bool {
	return t.Status == CreditStatusUnpaid && t.DueDate.Before(asOf)
}

// Payment records a debt repayment against the customer's aggregate balance.
type Payment struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customer_id"`
	Amount     float64   `json:"amount"`
	Note       string    `json:"note"`
	PaidAt     time.Time `json:"paid_at"`
}

// ErrNotFound indicates the referenced customer does not exist.
var ErrNotFound = errors.New("ledger: customer not found")

// ErrValidation indicates malformed customer input.
var ErrValidation = errors.New("ledger: invalid customer input")

// ErrCreditLimitExceeded triggered when extending credit would push debt past the limit.
var ErrCreditLimitExceeded = errors.New("ledger: credit limit exceeded")

// ErrInvalidAmount indicates a non-positive amount.
var ErrInvalidAmount = errors.New("ledger: amount must be positive")

// ErrExceedsDebt triggered when a payment is larger than the outstanding debt.
var ErrExceedsDebt = errors.New("ledger: payment exceeds outstanding debt")
