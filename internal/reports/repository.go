package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DayStats is today's headline numbers.
type DayStats struct {
	Revenue      float64
	Transactions int
	ItemsSold    int
}

// Repository reads report aggregates straight from the sales, ledger and
// catalog tables. It never writes.
type Repository interface {
	DayStats(ctx context.Context, start, end time.Time) (DayStats, error)
	RevenueSeries(ctx context.Context, start, end time.Time) ([]DailyPoint, error)
	DailyRows(ctx context.Context, start, end time.Time) ([]DailyRow, error)
	TopProducts(ctx context.Context, start, end time.Time, limit int) ([]TopProduct, error)
	ActiveCustomers(ctx context.Context) (int, error)
	OutstandingDebt(ctx context.Context) (float64, error)
	LowStock(ctx context.Context) ([]LowStockItem, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) DayStats(ctx context.Context, start, end time.Time) (DayStats, error) {
	var stats DayStats
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(s.total), 0),
		       COUNT(DISTINCT s.id),
		       COALESCE(SUM(si.quantity), 0)
		FROM sales s
		LEFT JOIN sale_items si ON si.sale_id = s.id
		WHERE s.created_at >= $1 AND s.created_at < $2`,
		start, end).Scan(&stats.Revenue, &stats.Transactions, &stats.ItemsSold)
	return stats, err
}

func (r *repository) RevenueSeries(ctx context.Context, start, end time.Time) ([]DailyPoint, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT to_char(date_trunc('day', created_at), 'YYYY-MM-DD') AS day,
		       COALESCE(SUM(total), 0),
		       COUNT(*)
		FROM sales
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY day
		ORDER BY day`,
		start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var series []DailyPoint
	for rows.Next() {
		var p DailyPoint
		if err := rows.Scan(&p.Date, &p.Revenue, &p.Transactions); err != nil {
			return nil, err
		}
		series = append(series, p)
	}
	return series, rows.Err()
}

func (r *repository) DailyRows(ctx context.Context, start, end time.Time) ([]DailyRow, error) {
	// Revenue counts each sale once; profit joins through items, so the two
	// aggregates come from separate grouped subqueries.
	rows, err := r.pool.Query(ctx, `
		SELECT rev.day, rev.revenue, rev.transactions, COALESCE(prof.profit, 0)
		FROM (
			SELECT to_char(date_trunc('day', created_at), 'YYYY-MM-DD') AS day,
			       COALESCE(SUM(total), 0) AS revenue,
			       COUNT(*) AS transactions
			FROM sales
			WHERE created_at >= $1 AND created_at < $2
			GROUP BY day
		) rev
		LEFT JOIN (
			SELECT to_char(date_trunc('day', s.created_at), 'YYYY-MM-DD') AS day,
			       SUM((si.unit_price - p.purchase_price) * si.quantity) AS profit
			FROM sales s
			JOIN sale_items si ON si.sale_id = s.id
			JOIN products p ON p.id = si.product_id
			WHERE s.created_at >= $1 AND s.created_at < $2
			GROUP BY day
		) prof ON prof.day = rev.day
		ORDER BY rev.day`,
		start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DailyRow
	for rows.Next() {
		var row DailyRow
		if err := rows.Scan(&row.Date, &row.Revenue, &row.Transactions, &row.Profit); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *repository) TopProducts(ctx context.Context, start, end time.Time, limit int) ([]TopProduct, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT si.product_id,
		       si.product_name,
		       SUM(si.quantity),
		       SUM(si.line_total),
		       COALESCE(SUM((si.unit_price - p.purchase_price) * si.quantity), 0)
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		JOIN products p ON p.id = si.product_id
		WHERE s.created_at >= $1 AND s.created_at < $2
		GROUP BY si.product_id, si.product_name
		ORDER BY SUM(si.quantity) DESC
		LIMIT $3`,
		start, end, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TopProduct
	for rows.Next() {
		var tp TopProduct
		if err := rows.Scan(&tp.ProductID, &tp.Name, &tp.Units, &tp.Revenue, &tp.Profit); err != nil {
			return nil, err
		}
		result = append(result, tp)
	}
	return result, rows.Err()
}

func (r *repository) ActiveCustomers(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE is_active`).Scan(&n)
	return n, err
}

func (r *repository) OutstandingDebt(ctx context.Context) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(current_debt), 0) FROM customers WHERE is_active`).Scan(&total)
	return total, err
}

func (r *repository) LowStock(ctx context.Context) ([]LowStockItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, code, name, stock, min_stock
		FROM products
		WHERE is_active AND stock <= min_stock
		ORDER BY stock`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []LowStockItem
	for rows.Next() {
		var item LowStockItem
		if err := rows.Scan(&item.ProductID, &item.Code, &item.Name, &item.Stock, &item.MinStock); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
