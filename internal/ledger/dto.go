package ledger

import "time"

type CreateCustomerRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Phone       string  `json:"phone" validate:"max=20"`
	Address     string  `json:"address" validate:"max=500"`
	CreditLimit float64 `json:"credit_limit" validate:"gte=0"`
}

type ExtendCreditInput struct {
	CustomerID  int64
	Amount      float64
	Description string
	DueDate     time.Time
}

type RecordPaymentRequest struct {
	Amount float64 `json:"amount" validate:"required"`
	Note   string  `json:"note" validate:"max=500"`
}
