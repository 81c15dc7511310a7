package sales

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ReceiptHeader is the store profile printed at the top of every receipt.
type ReceiptHeader struct {
	StoreName string
	Address   string
	Phone     string
	Footer    string
}

var receiptPrinter = message.NewPrinter(language.Indonesian)

// Rupiah formats an amount with Indonesian digit grouping, e.g. Rp15.000.
func Rupiah(amount float64) string {
	return receiptPrinter.Sprintf("Rp%v", number.Decimal(amount, number.MaxFractionDigits(0)))
}

const receiptWidth = 32

// RenderReceipt renders the plain-text receipt for a committed sale.
func RenderReceipt(header ReceiptHeader, sale Sale) string {
	var b strings.Builder
	line := strings.Repeat("=", receiptWidth)

	b.WriteString(center(header.StoreName) + "\n")
	if header.Address != "" {
		b.WriteString(center(header.Address) + "\n")
	}
	if header.Phone != "" {
		b.WriteString(center(header.Phone) + "\n")
	}
	b.WriteString(line + "\n")
	b.WriteString(fmt.Sprintf("No   : %s\n", sale.Code))
	b.WriteString(fmt.Sprintf("Waktu: %s\n", sale.CreatedAt.Format("02/01/2006 15:04")))
	if sale.CustomerName != "" {
		b.WriteString(fmt.Sprintf("Plgn : %s\n", sale.CustomerName))
	}
	b.WriteString(line + "\n")

	for _, item := range sale.Items {
		b.WriteString(item.ProductName + "\n")
		qty := fmt.Sprintf("  %d x %s", item.Quantity, Rupiah(item.UnitPrice))
		b.WriteString(padBetween(qty, Rupiah(item.LineTotal)) + "\n")
	}

	b.WriteString(line + "\n")
	b.WriteString(padBetween("Subtotal", Rupiah(sale.Subtotal)) + "\n")
	if sale.DiscountAmount > 0 {
		label := fmt.Sprintf("Diskon %.0f%%", sale.DiscountPercent)
		b.WriteString(padBetween(label, "-"+Rupiah(sale.DiscountAmount)) + "\n")
	}
	b.WriteString(padBetween("TOTAL", Rupiah(sale.Total)) + "\n")
	b.WriteString(padBetween("Bayar", paymentLabel(sale.PaymentMethod)) + "\n")
	b.WriteString(line + "\n")
	if header.Footer != "" {
		b.WriteString(center(header.Footer) + "\n")
	}
	return b.String()
}

func paymentLabel(m PaymentMethod) string {
	switch m {
	case PaymentCash:
		return "Tunai"
	case PaymentDebit:
		return "Debit"
	case PaymentCredit:
		return "Kasbon"
	case PaymentEwallet:
		return "E-Wallet"
	}
	return string(m)
}

func center(s string) string {
	if len(s) >= receiptWidth {
		return s
	}
	pad := (receiptWidth - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func padBetween(left, right string) string {
	gap := receiptWidth - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
