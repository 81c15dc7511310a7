package sales

// CommitItemRequest is one line of a checkout request.
type CommitItemRequest struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

// CommitSaleRequest is the POST /sales body.
type CommitSaleRequest struct {
	Items           []CommitItemRequest `json:"items" validate:"required,min=1,dive"`
	DiscountPercent float64             `json:"discount_percent" validate:"gte=0,lte=100"`
	PaymentMethod   string              `json:"payment_method" validate:"required"`
	CustomerID      *int64              `json:"customer_id"`
}

// CommitInput carries the commit parameters resolved by the handler.
type CommitInput struct {
	DiscountPercent float64
	PaymentMethod   PaymentMethod
	CustomerID      *int64
	IdempotencyKey  string
}
