package settings

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warungpos/warungpos/internal/platform/db"
)

// Store persists the settings row and performs full-state restore.
type Store interface {
	Get(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) (Settings, error)
	RestoreAll(ctx context.Context, doc BackupDocument) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed Store.
func NewRepository(pool *pgxpool.Pool) Store {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context) (Settings, error) {
	var s Settings
	err := r.pool.QueryRow(ctx, `
		SELECT store_name, address, phone, receipt_footer, low_stock_alerts, updated_at
		FROM settings WHERE id = 1`).
		Scan(&s.StoreName, &s.Address, &s.Phone, &s.ReceiptFooter, &s.LowStockAlerts, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Defaults(), nil
	}
	if err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (r *repository) Save(ctx context.Context, s Settings) (Settings, error) {
	s.UpdatedAt = time.Now()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO settings (id, store_name, address, phone, receipt_footer, low_stock_alerts, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			store_name = EXCLUDED.store_name,
			address = EXCLUDED.address,
			phone = EXCLUDED.phone,
			receipt_footer = EXCLUDED.receipt_footer,
			low_stock_alerts = EXCLUDED.low_stock_alerts,
			updated_at = EXCLUDED.updated_at`,
		s.StoreName, s.Address, s.Phone, s.ReceiptFooter, s.LowStockAlerts, s.UpdatedAt)
	if err != nil {
		return Settings{}, err
	}
	return s, nil
}

// RestoreAll replaces catalog, ledger, sales and settings state with the
// backup contents inside one transaction.
func (r *repository) RestoreAll(ctx context.Context, doc BackupDocument) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return restoreInto(ctx, tx, doc)
	})
}

func restoreInto(ctx context.Context, tx pgx.Tx, doc BackupDocument) error {
	for _, table := range []string{"sale_items", "sales", "payments", "credit_transactions", "customers", "products"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table); err != nil {
			return err
		}
	}

	for _, p := range doc.Products {
		if _, err := tx.Exec(ctx, `
			INSERT INTO products (id, code, name, category, purchase_price, selling_price, stock, unit, min_stock, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			p.ID, p.Code, p.Name, p.Category, p.PurchasePrice, p.SellingPrice,
			p.Stock, p.Unit, p.MinStock, p.IsActive, p.CreatedAt, p.UpdatedAt); err != nil {
			return err
		}
	}
	for _, c := range doc.Customers {
		if _, err := tx.Exec(ctx, `
			INSERT INTO customers (id, name, phone, address, credit_limit, current_debt, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			c.ID, c.Name, c.Phone, c.Address, c.CreditLimit, c.CurrentDebt,
			c.IsActive, c.CreatedAt, c.UpdatedAt); err != nil {
			return err
		}
	}
	for _, s := range doc.Sales {
		if _, err := tx.Exec(ctx, `
			INSERT INTO sales (id, code, customer_id, customer_name, subtotal, discount_percent, discount_amount, total, payment_method, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			s.ID, s.Code, s.CustomerID, s.CustomerName, s.Subtotal,
			s.DiscountPercent, s.DiscountAmount, s.Total, string(s.PaymentMethod), s.CreatedAt); err != nil {
			return err
		}
		for _, item := range s.Items {
			if _, err := tx.Exec(ctx, `
				INSERT INTO sale_items (id, sale_id, product_id, product_name, quantity, unit_price, line_total)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				item.ID, item.SaleID, item.ProductID, item.ProductName,
				item.Quantity, item.UnitPrice, item.LineTotal); err != nil {
				return err
			}
		}
	}

	for _, stmt := range []string{
		`SELECT setval(pg_get_serial_sequence('products', 'id'), COALESCE((SELECT MAX(id) FROM products), 1))`,
		`SELECT setval(pg_get_serial_sequence('customers', 'id'), COALESCE((SELECT MAX(id) FROM customers), 1))`,
		`SELECT setval(pg_get_serial_sequence('sales', 'id'), COALESCE((SELECT MAX(id) FROM sales), 1))`,
		`SELECT setval(pg_get_serial_sequence('sale_items', 'id'), COALESCE((SELECT MAX(id) FROM sale_items), 1))`,
	} {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	settings := doc.Settings
	settings.UpdatedAt = time.Now()
	if _, err := tx.Exec(ctx, `
		INSERT INTO settings (id, store_name, address, phone, receipt_footer, low_stock_alerts, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			store_name = EXCLUDED.store_name,
			address = EXCLUDED.address,
			phone = EXCLUDED.phone,
			receipt_footer = EXCLUDED.receipt_footer,
			low_stock_alerts = EXCLUDED.low_stock_alerts,
			updated_at = EXCLUDED.updated_at`,
		settings.StoreName, settings.Address, settings.Phone,
		settings.ReceiptFooter, settings.LowStockAlerts, settings.UpdatedAt); err != nil {
		return err
	}

	return nil
}
