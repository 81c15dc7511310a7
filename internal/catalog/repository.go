package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store abstracts product persistence so services never touch module-level state.
type Store interface {
	Search(ctx context.Context, query, category string) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	GetByCode(ctx context.Context, code string) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, product Product) error
	Deactivate(ctx context.Context, id int64) error
	// AdjustStock applies delta to the product's stock as one guarded step.
	// A negative delta that would take stock below zero fails with
	// ErrInsufficientStock and leaves the row untouched.
	AdjustStock(ctx context.Context, id int64, delta int) (Product, error)
	LowStock(ctx context.Context) ([]Product, error)
	All(ctx context.Context) ([]Product, error)
}

const productColumns = `id, code, name, category, purchase_price, selling_price, stock, unit, min_stock, is_active, created_at, updated_at`

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed Store.
func NewRepository(pool *pgxpool.Pool) Store {
	return &repository{pool: pool}
}

func (r *repository) Search(ctx context.Context, query, category string) ([]Product, error) {
	sql := `SELECT ` + productColumns + ` FROM products WHERE is_active`
	args := []interface{}{}
	argPos := 0

	if query != "" {
		argPos++
		sql += fmt.Sprintf(" AND (name ILIKE $%d OR code ILIKE $%d)", argPos, argPos)
		args = append(args, "%"+query+"%")
	}
	if category != "" && category != CategoryAll {
		argPos++
		sql += fmt.Sprintf(" AND LOWER(category) = LOWER($%d)", argPos)
		args = append(args, category)
	}
	sql += " ORDER BY id"

	return r.queryProducts(ctx, sql, args...)
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 AND is_active`, id)
	return scanProduct(row)
}

func (r *repository) GetByCode(ctx context.Context, code string) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE code = $1 AND is_active`, code)
	return scanProduct(row)
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO products (code, name, category, purchase_price, selling_price, stock, unit, min_stock, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
		RETURNING id, created_at, updated_at`,
		product.Code, product.Name, product.Category, product.PurchasePrice,
		product.SellingPrice, product.Stock, product.Unit, product.MinStock,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Product{}, ErrDuplicateCode
		}
		return Product{}, err
	}
	product.IsActive = true
	return product, nil
}

func (r *repository) Update(ctx context.Context, product Product) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE products
		SET name = $2, category = $3, purchase_price = $4, selling_price = $5,
		    stock = $6, unit = $7, min_stock = $8, updated_at = NOW()
		WHERE id = $1 AND is_active`,
		product.ID, product.Name, product.Category, product.PurchasePrice,
		product.SellingPrice, product.Stock, product.Unit, product.MinStock)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) AdjustStock(ctx context.Context, id int64, delta int) (Product, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE products
		SET stock = stock + $2, updated_at = NOW()
		WHERE id = $1 AND is_active AND stock + $2 >= 0
		RETURNING `+productColumns, id, delta)
	product, err := scanProduct(row)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Product{}, err
	}
	// Distinguish a missing product from a failed stock guard.
	if _, getErr := r.Get(ctx, id); getErr != nil {
		return Product{}, getErr
	}
	return Product{}, ErrInsufficientStock
}

func (r *repository) LowStock(ctx context.Context) ([]Product, error) {
	return r.queryProducts(ctx, `SELECT `+productColumns+` FROM products WHERE is_active AND stock <= min_stock ORDER BY id`)
}

func (r *repository) All(ctx context.Context) ([]Product, error) {
	return r.queryProducts(ctx, `SELECT `+productColumns+` FROM products WHERE is_active ORDER BY id`)
}

func (r *repository) queryProducts(ctx context.Context, sql string, args ...interface{}) ([]Product, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.Category, &p.PurchasePrice,
			&p.SellingPrice, &p.Stock, &p.Unit, &p.MinStock, &p.IsActive,
			&p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Code, &p.Name, &p.Category, &p.PurchasePrice,
		&p.SellingPrice, &p.Stock, &p.Unit, &p.MinStock, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}
