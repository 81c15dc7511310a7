package sales

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warungpos/warungpos/internal/platform/db"
)

// Store persists committed sales.
type Store interface {
	Create(ctx context.Context, sale Sale) (Sale, error)
	Get(ctx context.Context, id int64) (Sale, error)
	ListByDateRange(ctx context.Context, start, end time.Time) ([]Sale, error)
	All(ctx context.Context) ([]Sale, error)
}

const saleColumns = `id, code, customer_id, customer_name, subtotal, discount_percent, discount_amount, total, payment_method, created_at`
const itemColumns = `id, sale_id, product_id, product_name, quantity, unit_price, line_total`

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed Store.
func NewRepository(pool *pgxpool.Pool) Store {
	return &repository{pool: pool}
}

func (r *repository) Create(ctx context.Context, sale Sale) (Sale, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `
			INSERT INTO sales (code, customer_id, customer_name, subtotal, discount_percent, discount_amount, total, payment_method, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id`,
			sale.Code, sale.CustomerID, sale.CustomerName, sale.Subtotal,
			sale.DiscountPercent, sale.DiscountAmount, sale.Total,
			string(sale.PaymentMethod), sale.CreatedAt)
		if err := row.Scan(&sale.ID); err != nil {
			return err
		}

		for i := range sale.Items {
			item := &sale.Items[i]
			item.SaleID = sale.ID
			row := tx.QueryRow(ctx, `
				INSERT INTO sale_items (sale_id, product_id, product_name, quantity, unit_price, line_total)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id`,
				item.SaleID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice, item.LineTotal)
			if err := row.Scan(&item.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Sale{}, err
	}
	return sale, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Sale, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id)
	sale, err := scanSale(row)
	if err != nil {
		return Sale{}, err
	}
	items, err := r.itemsFor(ctx, sale.ID)
	if err != nil {
		return Sale{}, err
	}
	sale.Items = items
	return sale, nil
}

func (r *repository) ListByDateRange(ctx context.Context, start, end time.Time) ([]Sale, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+saleColumns+` FROM sales WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at DESC`,
		start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(ctx, rows)
}

func (r *repository) All(ctx context.Context) ([]Sale, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(ctx, rows)
}

func (r *repository) collect(ctx context.Context, rows pgx.Rows) ([]Sale, error) {
	var sales []Sale
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range sales {
		items, err := r.itemsFor(ctx, sales[i].ID)
		if err != nil {
			return nil, err
		}
		sales[i].Items = items
	}
	return sales, nil
}

func (r *repository) itemsFor(ctx context.Context, saleID int64) ([]SaleItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM sale_items WHERE sale_id = $1 ORDER BY id`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []SaleItem
	for rows.Next() {
		var item SaleItem
		if err := rows.Scan(&item.ID, &item.SaleID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitPrice, &item.LineTotal); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanSale(row pgx.Row) (Sale, error) {
	var sale Sale
	var method string
	err := row.Scan(&sale.ID, &sale.Code, &sale.CustomerID, &sale.CustomerName,
		&sale.Subtotal, &sale.DiscountPercent, &sale.DiscountAmount, &sale.Total,
		&method, &sale.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Sale{}, ErrNotFound
	}
	if err != nil {
		return Sale{}, err
	}
	sale.PaymentMethod = PaymentMethod(method)
	return sale, nil
}
