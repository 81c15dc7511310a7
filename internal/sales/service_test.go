package sales

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/warungpos/warungpos/internal/catalog"
	"github.com/warungpos/warungpos/internal/ledger"
	"github.com/warungpos/warungpos/internal/shared"
)

type memorySaleStore struct {
	mu    sync.Mutex
	sales []Sale
	fail  bool
}

func (m *memorySaleStore) Create(ctx context.Context, sale Sale) (Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return Sale{}, context.DeadlineExceeded
	}
	sale.ID = int64(len(m.sales) + 1)
	for i := range sale.Items {
		sale.Items[i].SaleID = sale.ID
	}
	m.sales = append(m.sales, sale)
	return sale, nil
}

func (m *memorySaleStore) Get(ctx context.Context, id int64) (Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sales {
		if s.ID == id {
			return s, nil
		}
	}
	return Sale{}, ErrNotFound
}

func (m *memorySaleStore) ListByDateRange(ctx context.Context, start, end time.Time) ([]Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []Sale
	for _, s := range m.sales {
		if !s.CreatedAt.Before(start) && s.CreatedAt.Before(end) {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *memorySaleStore) All(ctx context.Context) ([]Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]Sale, len(m.sales))
	copy(result, m.sales)
	return result, nil
}

type fakeCatalog struct {
	mu       sync.Mutex
	products map[int64]catalog.Product
}

func newFakeCatalog(products ...catalog.Product) *fakeCatalog {
	f := &fakeCatalog{products: map[int64]catalog.Product{}}
	for _, p := range products {
		f.products[p.ID] = p
	}
	return f
}

func (f *fakeCatalog) Get(ctx context.Context, id int64) (catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	return p, nil
}

func (f *fakeCatalog) ReserveStock(ctx context.Context, id int64, quantity int) (catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrNotFound
	}
	if p.Stock < quantity {
		return catalog.Product{}, catalog.ErrInsufficientStock
	}
	p.Stock -= quantity
	f.products[id] = p
	return p, nil
}

func (f *fakeCatalog) ReleaseStock(ctx context.Context, id int64, quantity int) (catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.products[id]
	p.Stock += quantity
	f.products[id] = p
	return p, nil
}

func (f *fakeCatalog) stock(id int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.products[id].Stock
}

type fakeLedger struct {
	mu        sync.Mutex
	customers map[int64]ledger.Customer
	credits   []ledger.CreditTransaction
}

func newFakeLedger(customers ...ledger.Customer) *fakeLedger {
	f := &fakeLedger{customers: map[int64]ledger.Customer{}}
	for _, c := range customers {
		f.customers[c.ID] = c
	}
	return f
}

func (f *fakeLedger) Get(ctx context.Context, id int64) (ledger.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[id]
	if !ok {
		return ledger.Customer{}, ledger.ErrNotFound
	}
	return c, nil
}

func (f *fakeLedger) ExtendCredit(ctx context.Context, input ledger.ExtendCreditInput) (ledger.CreditTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if input.Amount <= 0 {
		return ledger.CreditTransaction{}, ledger.ErrInvalidAmount
	}
	c, ok := f.customers[input.CustomerID]
	if !ok {
		return ledger.CreditTransaction{}, ledger.ErrNotFound
	}
	if c.CurrentDebt+input.Amount > c.CreditLimit {
		return ledger.CreditTransaction{}, ledger.ErrCreditLimitExceeded
	}
	c.CurrentDebt += input.Amount
	f.customers[input.CustomerID] = c
	credit := ledger.CreditTransaction{
		ID:          int64(len(f.credits) + 1),
		CustomerID:  input.CustomerID,
		Amount:      input.Amount,
		Description: input.Description,
		Status:      ledger.CreditStatusUnpaid,
	}
	f.credits = append(f.credits, credit)
	return credit, nil
}

func (f *fakeLedger) debt(id int64) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.customers[id].CurrentDebt
}

type fakeIdem struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newFakeIdem() *fakeIdem {
	return &fakeIdem{keys: map[string]bool{}}
}

func (f *fakeIdem) CheckAndInsert(ctx context.Context, key, module string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.keys[key] {
		return shared.ErrIdempotencyConflict
	}
	f.keys[key] = true
	return nil
}

func (f *fakeIdem) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.keys, key)
	return nil
}

func indomie(stock int) catalog.Product {
	return catalog.Product{ID: 1, Code: "P001", Name: "Indomie Goreng", SellingPrice: 3500, Stock: stock}
}

func tehBotol(stock int) catalog.Product {
	return catalog.Product{ID: 2, Code: "P002", Name: "Teh Botol", SellingPrice: 5000, Stock: stock}
}

func buildCart(t *testing.T, cat *fakeCatalog, quantities map[int64]int) *Cart {
	t.Helper()
	cart := &Cart{}
	for id, qty := range quantities {
		p, err := cat.Get(context.Background(), id)
		require.NoError(t, err)
		require.NoError(t, cart.AddLine(p, qty))
	}
	return cart
}

func TestCommitCash(t *testing.T) {
	cat := newFakeCatalog(indomie(100), tehBotol(50))
	store := &memorySaleStore{}
	svc := NewService(ServiceParams{Store: store, Catalog: cat, Ledger: newFakeLedger()})

	cart := buildCart(t, cat, map[int64]int{1: 10})
	sale, err := svc.Commit(context.Background(), cart, CommitInput{PaymentMethod: PaymentCash})
	require.NoError(t, err)

	require.Regexp(t, `^POS-[0-9a-f]{8}$`, sale.Code)
	require.Equal(t, 35000.0, sale.Total)
	require.Len(t, sale.Items, 1)
	require.Equal(t, "Indomie Goreng", sale.Items[0].ProductName)
	require.Equal(t, 90, cat.stock(1))

	stored, err := svc.Get(context.Background(), sale.ID)
	require.NoError(t, err)
	require.Equal(t, sale.Code, stored.Code)
}

func TestCommitRollsBackStockOnFailure(t *testing.T) {
	// Second line oversells; the first reservation must be undone and no
	// sale persisted.
	cat := newFakeCatalog(indomie(100), tehBotol(50))
	store := &memorySaleStore{}
	svc := NewService(ServiceParams{Store: store, Catalog: cat, Ledger: newFakeLedger()})

	cart := &Cart{}
	p1, _ := cat.Get(context.Background(), 1)
	require.NoError(t, cart.AddLine(p1, 10))
	// Bypass the cart's own stock check to exercise the commit-time guard.
	cart.lines = append(cart.lines, Line{ProductID: 2, ProductName: "Teh Botol", Quantity: 60, UnitPrice: 5000})

	_, err := svc.Commit(context.Background(), cart, CommitInput{PaymentMethod: PaymentCash})
	require.ErrorIs(t, err, catalog.ErrInsufficientStock)
	require.Contains(t, err.Error(), "Teh Botol")

	require.Equal(t, 100, cat.stock(1))
	require.Equal(t, 50, cat.stock(2))
	all, _ := store.All(context.Background())
	require.Empty(t, all)
}

func TestCommitCredit(t *testing.T) {
	cat := newFakeCatalog(indomie(100))
	led := newFakeLedger(ledger.Customer{ID: 7, Name: "Ahmad Wijaya", CreditLimit: 100000})
	svc := NewService(ServiceParams{Store: &memorySaleStore{}, Catalog: cat, Ledger: led})

	customerID := int64(7)
	cart := buildCart(t, cat, map[int64]int{1: 10})
	sale, err := svc.Commit(context.Background(), cart, CommitInput{
		PaymentMethod: PaymentCredit,
		CustomerID:    &customerID,
	})
	require.NoError(t, err)
	require.Equal(t, "Ahmad Wijaya", sale.CustomerName)
	require.Equal(t, 35000.0, led.debt(7))
	require.Equal(t, sale.Code, led.credits[0].Description)
}

func TestCommitCreditLimitRollsBackReservations(t *testing.T) {
	cat := newFakeCatalog(indomie(100))
	led := newFakeLedger(ledger.Customer{ID: 7, Name: "Ahmad Wijaya", CreditLimit: 100000, CurrentDebt: 90000})
	store := &memorySaleStore{}
	svc := NewService(ServiceParams{Store: store, Catalog: cat, Ledger: led})

	customerID := int64(7)
	cart := buildCart(t, cat, map[int64]int{1: 10})
	_, err := svc.Commit(context.Background(), cart, CommitInput{
		PaymentMethod: PaymentCredit,
		CustomerID:    &customerID,
	})
	require.ErrorIs(t, err, ledger.ErrCreditLimitExceeded)

	require.Equal(t, 100, cat.stock(1))
	require.Equal(t, 90000.0, led.debt(7))
	all, _ := store.All(context.Background())
	require.Empty(t, all)
}

func TestCommitCreditRequiresCustomer(t *testing.T) {
	cat := newFakeCatalog(indomie(100))
	svc := NewService(ServiceParams{Store: &memorySaleStore{}, Catalog: cat, Ledger: newFakeLedger()})

	cart := buildCart(t, cat, map[int64]int{1: 1})
	_, err := svc.Commit(context.Background(), cart, CommitInput{PaymentMethod: PaymentCredit})
	require.ErrorIs(t, err, ErrCreditRequiresCustomer)
	require.Equal(t, 100, cat.stock(1))
}

func TestCommitValidation(t *testing.T) {
	cat := newFakeCatalog(indomie(100))
	svc := NewService(ServiceParams{Store: &memorySaleStore{}, Catalog: cat, Ledger: newFakeLedger()})

	_, err := svc.Commit(context.Background(), &Cart{}, CommitInput{PaymentMethod: PaymentCash})
	require.ErrorIs(t, err, ErrEmptyCart)

	cart := buildCart(t, cat, map[int64]int{1: 1})
	_, err = svc.Commit(context.Background(), cart, CommitInput{PaymentMethod: "cek"})
	require.ErrorIs(t, err, ErrInvalidPaymentMethod)

	_, err = svc.Commit(context.Background(), cart, CommitInput{PaymentMethod: PaymentCash, DiscountPercent: 150})
	require.ErrorIs(t, err, ErrInvalidDiscount)
}

func TestCommitIdempotencyKey(t *testing.T) {
	cat := newFakeCatalog(indomie(100))
	svc := NewService(ServiceParams{Store: &memorySaleStore{}, Catalog: cat, Ledger: newFakeLedger(), Idem: newFakeIdem()})

	cart := buildCart(t, cat, map[int64]int{1: 1})
	_, err := svc.Commit(context.Background(), cart, CommitInput{PaymentMethod: PaymentCash, IdempotencyKey: "req-1"})
	require.NoError(t, err)

	retry := buildCart(t, cat, map[int64]int{1: 1})
	_, err = svc.Commit(context.Background(), retry, CommitInput{PaymentMethod: PaymentCash, IdempotencyKey: "req-1"})
	require.ErrorIs(t, err, shared.ErrIdempotencyConflict)
}

func TestCommitFailureFreesIdempotencyKey(t *testing.T) {
	cat := newFakeCatalog(indomie(100))
	store := &memorySaleStore{fail: true}
	svc := NewService(ServiceParams{Store: store, Catalog: cat, Ledger: newFakeLedger(), Idem: newFakeIdem()})

	cart := buildCart(t, cat, map[int64]int{1: 1})
	_, err := svc.Commit(context.Background(), cart, CommitInput{PaymentMethod: PaymentCash, IdempotencyKey: "req-2"})
	require.Error(t, err)
	require.Equal(t, 100, cat.stock(1))

	store.fail = false
	retry := buildCart(t, cat, map[int64]int{1: 1})
	_, err = svc.Commit(context.Background(), retry, CommitInput{PaymentMethod: PaymentCash, IdempotencyKey: "req-2"})
	require.NoError(t, err)
}

func TestListByDateRange(t *testing.T) {
	cat := newFakeCatalog(indomie(100))
	store := &memorySaleStore{}
	svc := NewService(ServiceParams{Store: store, Catalog: cat, Ledger: newFakeLedger()})
	svc.now = func() time.Time { return time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC) }

	cart := buildCart(t, cat, map[int64]int{1: 2})
	_, err := svc.Commit(context.Background(), cart, CommitInput{PaymentMethod: PaymentCash})
	require.NoError(t, err)

	inRange, err := svc.ListByDateRange(context.Background(),
		time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, inRange, 1)

	outOfRange, err := svc.ListByDateRange(context.Background(),
		time.Date(2026, 8, 16, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Empty(t, outOfRange)
}
