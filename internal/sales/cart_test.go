package sales

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/warungpos/warungpos/internal/catalog"
)

func TestCartTotals(t *testing.T) {
	cart := &Cart{}
	require.NoError(t, cart.AddLine(catalog.Product{ID: 1, Name: "Indomie Goreng", SellingPrice: 3500, Stock: 100}, 10))
	require.NoError(t, cart.AddLine(catalog.Product{ID: 2, Name: "Teh Botol", SellingPrice: 5000, Stock: 50}, 13))

	totals, err := cart.Totals(10)
	require.NoError(t, err)
	require.Equal(t, 100000.0, totals.Subtotal)
	require.Equal(t, 10000.0, totals.DiscountAmount)
	require.Equal(t, 90000.0, totals.Total)

	_, err = cart.Totals(-1)
	require.ErrorIs(t, err, ErrInvalidDiscount)
	_, err = cart.Totals(101)
	require.ErrorIs(t, err, ErrInvalidDiscount)
}

func TestCartAddLineMergesAndChecksStock(t *testing.T) {
	product := catalog.Product{ID: 1, Name: "Indomie Goreng", SellingPrice: 3500, Stock: 5}
	cart := &Cart{}

	require.NoError(t, cart.AddLine(product, 3))
	require.NoError(t, cart.AddLine(product, 2))

	lines := cart.Lines()
	require.Len(t, lines, 1)
	require.Equal(t, 5, lines[0].Quantity)

	err := cart.AddLine(product, 1)
	require.ErrorIs(t, err, catalog.ErrInsufficientStock)
	require.Contains(t, err.Error(), "Indomie Goreng")

	require.ErrorIs(t, cart.AddLine(product, 0), catalog.ErrInvalidQuantity)
}

func TestCartSetQuantity(t *testing.T) {
	cart := &Cart{}
	require.NoError(t, cart.AddLine(catalog.Product{ID: 1, Name: "Indomie Goreng", SellingPrice: 3500, Stock: 100}, 4))

	cart.SetQuantity(1, 9)
	require.Equal(t, 9, cart.Lines()[0].Quantity)

	cart.SetQuantity(1, 0)
	require.True(t, cart.Empty())
}

func TestRenderReceipt(t *testing.T) {
	sale := Sale{
		Code:            "POS-abc12345",
		CustomerName:    "Ahmad Wijaya",
		Subtotal:        100000,
		DiscountPercent: 10,
		DiscountAmount:  10000,
		Total:           90000,
		PaymentMethod:   PaymentCash,
		Items: []SaleItem{
			{ProductName: "Indomie Goreng", Quantity: 10, UnitPrice: 3500, LineTotal: 35000},
			{ProductName: "Teh Botol", Quantity: 13, UnitPrice: 5000, LineTotal: 65000},
		},
	}
	out := RenderReceipt(ReceiptHeader{StoreName: "Warung Barokah", Footer: "Terima kasih"}, sale)

	require.Contains(t, out, "Warung Barokah")
	require.Contains(t, out, "POS-abc12345")
	require.Contains(t, out, "Indomie Goreng")
	require.Contains(t, out, "Rp100.000")
	require.Contains(t, out, "-Rp10.000")
	require.Contains(t, out, "Rp90.000")
	require.Contains(t, out, "Tunai")
	require.Contains(t, out, "Terima kasih")
}
