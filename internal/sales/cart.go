package sales

import (
	"fmt"

	"github.com/warungpos/warungpos/internal/catalog"
)

// Line is one cart entry carrying a snapshot of the product at add time.
type Line struct {
	ProductID   int64   `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Totals is the computed money breakdown of a cart.
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	Total          float64 `json:"total"`
}

// Cart accumulates lines before commit. It is a plain value; stock is only
// checked against the snapshot the caller passed in, the real guard runs at
// commit time inside the catalog.
type Cart struct {
	lines []Line
}

// AddLine appends quantity of product, merging with an existing line for the
// same product. The combined quantity must not exceed the product's current
// stock.
func (c *Cart) AddLine(product catalog.Product, quantity int) error {
	if quantity <= 0 {
		return catalog.ErrInvalidQuantity
	}
	existing := 0
	for _, l := range c.lines {
		if l.ProductID == product.ID {
			existing = l.Quantity
			break
		}
	}
	if existing+quantity > product.Stock {
		return fmt.Errorf("%w: %s has %d left", catalog.ErrInsufficientStock, product.Name, product.Stock)
	}
	for i, l := range c.lines {
		if l.ProductID == product.ID {
			c.lines[i].Quantity += quantity
			return nil
		}
	}
	c.lines = append(c.lines, Line{
		ProductID:   product.ID,
		ProductName: product.Name,
		Quantity:    quantity,
		UnitPrice:   product.SellingPrice,
	})
	return nil
}

// SetQuantity replaces the quantity of a line; zero or less removes it.
func (c *Cart) SetQuantity(productID int64, quantity int) {
	if quantity <= 0 {
		c.RemoveLine(productID)
		return
	}
	for i, l := range c.lines {
		if l.ProductID == productID {
			c.lines[i].Quantity = quantity
			return
		}
	}
}

// RemoveLine drops the line for productID, a no-op when absent.
func (c *Cart) RemoveLine(productID int64) {
	for i, l := range c.lines {
		if l.ProductID == productID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Lines returns a copy of the cart contents in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}

// Totals computes subtotal, discount amount and grand total for the given
// whole-cart discount percentage.
func (c *Cart) Totals(discountPercent float64) (Totals, error) {
	if discountPercent < 0 || discountPercent > 100 {
		return Totals{}, ErrInvalidDiscount
	}
	var subtotal float64
	for _, l := range c.lines {
		subtotal += float64(l.Quantity) * l.UnitPrice
	}
	discount := subtotal * discountPercent / 100
	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		Total:          subtotal - discount,
	}, nil
}
