package reports

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var exportPrinter = message.NewPrinter(language.Indonesian)

func rupiah(amount float64) string {
	return exportPrinter.Sprintf("Rp%v", number.Decimal(amount, number.MaxFractionDigits(0)))
}

// RenderSalesReport renders a plain-text sales report suitable for printing
// or archiving.
func RenderSalesReport(report SalesReport) string {
	var b strings.Builder
	rule := strings.Repeat("-", 56)

	b.WriteString("LAPORAN PENJUALAN\n")
	b.WriteString(fmt.Sprintf("Periode: %s s/d %s\n", report.Start, report.End))
	b.WriteString(rule + "\n")
	b.WriteString(fmt.Sprintf("%-12s %14s %8s %14s\n", "Tanggal", "Omzet", "Trx", "Laba"))
	for _, row := range report.Rows {
		b.WriteString(fmt.Sprintf("%-12s %14s %8d %14s\n",
			row.Date, rupiah(row.Revenue), row.Transactions, rupiah(row.Profit)))
	}
	b.WriteString(rule + "\n")
	b.WriteString(fmt.Sprintf("%-12s %14s %8d %14s\n",
		"TOTAL", rupiah(report.TotalRevenue), report.TotalTransactions, rupiah(report.TotalProfit)))

	if len(report.TopProducts) > 0 {
		b.WriteString("\nProduk Terlaris\n")
		for i, tp := range report.TopProducts {
			b.WriteString(fmt.Sprintf("%d. %s: %d pcs, %s\n", i+1, tp.Name, tp.Units, rupiah(tp.Revenue)))
		}
	}
	return b.String()
}
