package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warungpos/warungpos/internal/platform/db"
)

// Store abstracts ledger persistence.
type Store interface {
	// WithTx runs fn inside one transaction; debt updates and credit or
	// payment inserts must land together or not at all.
	WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error
	Search(ctx context.Context, query string) ([]Customer, error)
	Get(ctx context.Context, id int64) (Customer, error)
	Create(ctx context.Context, customer Customer) (Customer, error)
	CreditsByCustomer(ctx context.Context, customerID int64) ([]CreditTransaction, error)
	PaymentsByCustomer(ctx context.Context, customerID int64) ([]Payment, error)
	ListOverdue(ctx context.Context, asOf time.Time) ([]CreditTransaction, error)
	TotalOutstanding(ctx context.Context) (float64, error)
	All(ctx context.Context) ([]Customer, error)
}

// TxStore exposes transactional operations used by the service.
type TxStore interface {
	GetCustomerForUpdate(ctx context.Context, id int64) (Customer, error)
	SetDebt(ctx context.Context, id int64, debt float64) error
	InsertCredit(ctx context.Context, credit CreditTransaction) (CreditTransaction, error)
	InsertPayment(ctx context.Context, payment Payment) (Payment, error)
	UnpaidByDueDate(ctx context.Context, customerID int64) ([]CreditTransaction, error)
	MarkCreditPaid(ctx context.Context, creditID int64) error
}

const customerColumns = `id, name, phone, address, credit_limit, current_debt, is_active, created_at, updated_at`
const creditColumns = `id, customer_id, amount, description, issued_at, due_date, status`

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed Store.
func NewRepository(pool *pgxpool.Pool) Store {
	return &repository{pool: pool}
}

type txStore struct {
	tx pgx.Tx
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxStore) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txStore{tx: tx})
	})
}

func (r *repository) Search(ctx context.Context, query string) ([]Customer, error) {
	sql := `SELECT ` + customerColumns + ` FROM customers WHERE is_active`
	args := []interface{}{}
	if query != "" {
		sql += ` AND (name ILIKE $1 OR phone LIKE $1)`
		args = append(args, "%"+query+"%")
	}
	sql += ` ORDER BY id`
	return queryCustomers(ctx, r.pool, sql, args...)
}

func (r *repository) Get(ctx context.Context, id int64) (Customer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1 AND is_active`, id)
	return scanCustomer(row)
}

func (r *repository) Create(ctx context.Context, customer Customer) (Customer, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO customers (name, phone, address, credit_limit, current_debt, is_active)
		VALUES ($1, $2, $3, $4, 0, TRUE)
		RETURNING id, created_at, updated_at`,
		customer.Name, customer.Phone, customer.Address, customer.CreditLimit,
	).Scan(&customer.ID, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		return Customer{}, err
	}
	customer.CurrentDebt = 0
	customer.IsActive = true
	return customer, nil
}

func (r *repository) CreditsByCustomer(ctx context.Context, customerID int64) ([]CreditTransaction, error) {
	return queryCredits(ctx, r.pool, `SELECT `+creditColumns+` FROM credit_transactions WHERE customer_id = $1 ORDER BY issued_at`, customerID)
}

func (r *repository) PaymentsByCustomer(ctx context.Context, customerID int64) ([]Payment, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, customer_id, amount, note, paid_at FROM payments WHERE customer_id = $1 ORDER BY paid_at`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.CustomerID, &p.Amount, &p.Note, &p.PaidAt); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *repository) ListOverdue(ctx context.Context, asOf time.Time) ([]CreditTransaction, error) {
	return queryCredits(ctx, r.pool, `SELECT `+creditColumns+` FROM credit_transactions WHERE status = 'unpaid' AND due_date < $1 ORDER BY due_date`, asOf)
}

func (r *repository) TotalOutstanding(ctx context.Context) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(current_debt), 0) FROM customers WHERE is_active`).Scan(&total)
	return total, err
}

func (r *repository) All(ctx context.Context) ([]Customer, error) {
	return queryCustomers(ctx, r.pool, `SELECT `+customerColumns+` FROM customers WHERE is_active ORDER BY id`)
}

func (s *txStore) GetCustomerForUpdate(ctx context.Context, id int64) (Customer, error) {
	row := s.tx.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1 AND is_active FOR UPDATE`, id)
	return scanCustomer(row)
}

func (s *txStore) SetDebt(ctx context.Context, id int64, debt float64) error {
	tag, err := s.tx.Exec(ctx, `UPDATE customers SET current_debt = $2, updated_at = NOW() WHERE id = $1 AND is_active`, id, debt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *txStore) InsertCredit(ctx context.Context, credit CreditTransaction) (CreditTransaction, error) {
	err := s.tx.QueryRow(ctx, `
		INSERT INTO credit_transactions (customer_id, amount, description, issued_at, due_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		credit.CustomerID, credit.Amount, credit.Description, credit.IssuedAt, credit.DueDate, credit.Status,
	).Scan(&credit.ID)
	if err != nil {
		return CreditTransaction{}, err
	}
	return credit, nil
}

func (s *txStore) InsertPayment(ctx context.Context, payment Payment) (Payment, error) {
	err := s.tx.QueryRow(ctx, `
		INSERT INTO payments (customer_id, amount, note, paid_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		payment.CustomerID, payment.Amount, payment.Note, payment.PaidAt,
	).Scan(&payment.ID)
	if err != nil {
		return Payment{}, err
	}
	return payment, nil
}

func (s *txStore) UnpaidByDueDate(ctx context.Context, customerID int64) ([]CreditTransaction, error) {
	return queryCredits(ctx, s.tx, `SELECT `+creditColumns+` FROM credit_transactions WHERE customer_id = $1 AND status = 'unpaid' ORDER BY due_date, id`, customerID)
}

func (s *txStore) MarkCreditPaid(ctx context.Context, creditID int64) error {
	_, err := s.tx.Exec(ctx, `UPDATE credit_transactions SET status = 'paid' WHERE id = $1`, creditID)
	return err
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryCustomers(ctx context.Context, q querier, sql string, args ...interface{}) ([]Customer, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.CreditLimit,
			&c.CurrentDebt, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func queryCredits(ctx context.Context, q querier, sql string, args ...interface{}) ([]CreditTransaction, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var credits []CreditTransaction
	for rows.Next() {
		var t CreditTransaction
		err := rows.Scan(&t.ID, &t.CustomerID, &t.Amount, &t.Description, &t.IssuedAt, &t.DueDate, &t.Status)
		if err != nil {
			return nil, err
		}
		credits = append(credits, t)
	}
	return credits, rows.Err()
}

func scanCustomer(row pgx.Row) (Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.CreditLimit,
		&c.CurrentDebt, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Customer{}, ErrNotFound
		}
		return Customer{}, err
	}
	return c, nil
}
