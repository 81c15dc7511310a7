package sales

import (
	"errors"
	"time"
)

// PaymentMethod is how a sale was settled at the counter.
type PaymentMethod string

const (
	PaymentCash    PaymentMethod = "cash"
	PaymentDebit   PaymentMethod = "debit"
	PaymentCredit  PaymentMethod = "credit"
	PaymentEwallet PaymentMethod = "ewallet"
)

// Valid reports whether the method is one of the accepted values.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentDebit, PaymentCredit, PaymentEwallet:
		return true
	}
	return false
}

var (
	ErrNotFound               = errors.New("sales: sale not found")
	ErrEmptyCart              = errors.New("sales: cart is empty")
	ErrInvalidDiscount        = errors.New("sales: discount must be between 0 and 100")
	ErrInvalidPaymentMethod   = errors.New("sales: unknown payment method")
	ErrCreditRequiresCustomer = errors.New("sales: credit payment requires a customer")
)

// Sale is an immutable committed transaction. There is no edit or cancel;
// corrections happen as new transactions.
type Sale struct {
	ID              int64         `json:"id"`
	Code            string        `json:"code"`
	CustomerID      *int64        `json:"customer_id,omitempty"`
	CustomerName    string        `json:"customer_name,omitempty"`
	Subtotal        float64       `json:"subtotal"`
	DiscountPercent float64       `json:"discount_percent"`
	DiscountAmount  float64       `json:"discount_amount"`
	Total           float64       `json:"total"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	Items           []SaleItem    `json:"items"`
	CreatedAt       time.Time     `json:"created_at"`
}

// SaleItem snapshots product name and price at the moment of sale so later
// catalog edits never rewrite history.
type SaleItem struct {
	ID          int64   `json:"id"`
	SaleID      int64   `json:"sale_id"`
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	LineTotal   float64 `json:"line_total"`
}
