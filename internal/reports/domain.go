package reports

import "time"

// DailyPoint is one day of the dashboard revenue series.
type DailyPoint struct {
	Date         string  `json:"date"`
	Revenue      float64 `json:"revenue"`
	Transactions int     `json:"transactions"`
}

// TopProduct aggregates units sold and money over a period.
type TopProduct struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Units     int     `json:"units"`
	Revenue   float64 `json:"revenue"`
	Profit    float64 `json:"profit"`
}

// LowStockItem is a product at or below its minimum stock.
type LowStockItem struct {
	ProductID int64  `json:"product_id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Stock     int    `json:"stock"`
	MinStock  int    `json:"min_stock"`
}

// Dashboard is the GET /reports?type=dashboard aggregate.
type Dashboard struct {
	TodayRevenue      float64        `json:"today_revenue"`
	TodayTransactions int            `json:"today_transactions"`
	TodayItemsSold    int            `json:"today_items_sold"`
	ActiveCustomers   int            `json:"active_customers"`
	OutstandingDebt   float64        `json:"outstanding_debt"`
	WeeklySeries      []DailyPoint   `json:"weekly_series"`
	TopProducts       []TopProduct   `json:"top_products"`
	LowStock          []LowStockItem `json:"low_stock"`
	GeneratedAt       time.Time      `json:"generated_at"`
}

// DailyRow is one row of the sales report table.
type DailyRow struct {
	Date         string  `json:"date"`
	Revenue      float64 `json:"revenue"`
	Transactions int     `json:"transactions"`
	Profit       float64 `json:"profit"`
}

// SalesReport is the GET /reports?type=sales aggregate over a date range.
type SalesReport struct {
	Start             string       `json:"start"`
	End               string       `json:"end"`
	TotalRevenue      float64      `json:"total_revenue"`
	TotalProfit       float64      `json:"total_profit"`
	TotalTransactions int          `json:"total_transactions"`
	Rows              []DailyRow   `json:"rows"`
	TopProducts       []TopProduct `json:"top_products"`
	GeneratedAt       time.Time    `json:"generated_at"`
}
