package catalog

type CreateProductRequest struct {
	Code          string  `json:"code" validate:"required,max=50"`
	Name          string  `json:"name" validate:"required,max=255"`
	Category      string  `json:"category" validate:"required,max=100"`
	PurchasePrice float64 `json:"purchase_price"`
	SellingPrice  float64 `json:"selling_price"`
	Stock         int     `json:"stock"`
	Unit          string  `json:"unit" validate:"max=50"`
	MinStock      int     `json:"min_stock"`
}

type UpdateProductRequest struct {
	Name          *string  `json:"name,omitempty" validate:"omitempty,max=255"`
	Category      *string  `json:"category,omitempty" validate:"omitempty,max=100"`
	PurchasePrice *float64 `json:"purchase_price,omitempty"`
	SellingPrice  *float64 `json:"selling_price,omitempty"`
	Stock         *int     `json:"stock,omitempty"`
	Unit          *string  `json:"unit,omitempty" validate:"omitempty,max=50"`
	MinStock      *int     `json:"min_stock,omitempty"`
}
