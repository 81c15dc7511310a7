package catalog

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu       sync.Mutex
	products []Product
	nextID   int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{}
}

func (m *memoryStore) Search(ctx context.Context, query, category string) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []Product
	for _, p := range m.products {
		if !p.IsActive {
			continue
		}
		if query != "" {
			q := strings.ToLower(query)
			if !strings.Contains(strings.ToLower(p.Name), q) && !strings.Contains(strings.ToLower(p.Code), q) {
				continue
			}
		}
		if category != "" && category != CategoryAll && !strings.EqualFold(p.Category, category) {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

func (m *memoryStore) Get(ctx context.Context, id int64) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.find(id)
}

func (m *memoryStore) find(id int64) (Product, error) {
	for _, p := range m.products {
		if p.ID == id && p.IsActive {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (m *memoryStore) GetByCode(ctx context.Context, code string) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.Code == code && p.IsActive {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (m *memoryStore) Create(ctx context.Context, product Product) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.products {
		if existing.Code == product.Code && existing.IsActive {
			return Product{}, ErrDuplicateCode
		}
	}
	m.nextID++
	product.ID = m.nextID
	product.IsActive = true
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	m.products = append(m.products, product)
	return product, nil
}

func (m *memoryStore) Update(ctx context.Context, product Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.products {
		if p.ID == product.ID && p.IsActive {
			product.CreatedAt = p.CreatedAt
			product.UpdatedAt = time.Now()
			product.IsActive = true
			m.products[i] = product
			return nil
		}
	}
	return ErrNotFound
}

func (m *memoryStore) Deactivate(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.products {
		if p.ID == id && p.IsActive {
			m.products[i].IsActive = false
			return nil
		}
	}
	return ErrNotFound
}

func (m *memoryStore) AdjustStock(ctx context.Context, id int64, delta int) (Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.products {
		if p.ID == id && p.IsActive {
			if p.Stock+delta < 0 {
				return Product{}, ErrInsufficientStock
			}
			m.products[i].Stock += delta
			m.products[i].UpdatedAt = time.Now()
			return m.products[i], nil
		}
	}
	return Product{}, ErrNotFound
}

func (m *memoryStore) LowStock(ctx context.Context) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []Product
	for _, p := range m.products {
		if p.IsActive && p.IsLowStock() {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *memoryStore) All(ctx context.Context) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []Product
	for _, p := range m.products {
		if p.IsActive {
			result = append(result, p)
		}
	}
	return result, nil
}

func seedProduct(t *testing.T, svc *Service, code, name, category string, price float64, stock int) Product {
	t.Helper()
	p, err := svc.Create(context.Background(), CreateProductRequest{
		Code:          code,
		Name:          name,
		Category:      category,
		PurchasePrice: price * 0.8,
		SellingPrice:  price,
		Stock:         stock,
		Unit:          "pcs",
		MinStock:      5,
	})
	require.NoError(t, err)
	return p
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemoryStore(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateProductRequest{Name: "Indomie Goreng"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, CreateProductRequest{Code: "P001"})
	require.ErrorIs(t, err, ErrValidation)

	p, err := svc.Create(ctx, CreateProductRequest{
		Code:          "P001",
		Name:          "Indomie Goreng",
		Category:      "Makanan",
		PurchasePrice: -2500,
		SellingPrice:  3000,
		Stock:         -10,
	})
	require.NoError(t, err)
	require.Equal(t, 0.0, p.PurchasePrice)
	require.Equal(t, 0, p.Stock)
}

func TestSearchFilters(t *testing.T) {
	svc := NewService(newMemoryStore(), nil)
	ctx := context.Background()

	seedProduct(t, svc, "P001", "Indomie Goreng", "Makanan", 3000, 150)
	seedProduct(t, svc, "P002", "Teh Botol Sosro", "Minuman", 5000, 80)
	seedProduct(t, svc, "P003", "Indomie Ayam Bawang", "Makanan", 3000, 120)

	all, err := svc.Search(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, all, 3)

	byName, err := svc.Search(ctx, "indomie", "")
	require.NoError(t, err)
	require.Len(t, byName, 2)
	require.Equal(t, "P001", byName[0].Code)
	require.Equal(t, "P003", byName[1].Code)

	byCode, err := svc.Search(ctx, "p002", "")
	require.NoError(t, err)
	require.Len(t, byCode, 1)
	require.Equal(t, "Teh Botol Sosro", byCode[0].Name)

	byCategory, err := svc.Search(ctx, "", "minuman")
	require.NoError(t, err)
	require.Len(t, byCategory, 1)

	allCategory, err := svc.Search(ctx, "", CategoryAll)
	require.NoError(t, err)
	require.Len(t, allCategory, 3)
}

func TestSearchIsStable(t *testing.T) {
	svc := NewService(newMemoryStore(), nil)
	ctx := context.Background()

	seedProduct(t, svc, "P001", "Indomie Goreng", "Makanan", 3000, 150)
	seedProduct(t, svc, "P002", "Indomie Kari", "Makanan", 3000, 90)

	first, err := svc.Search(ctx, "indomie", "makanan")
	require.NoError(t, err)
	second, err := svc.Search(ctx, "indomie", "makanan")
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestUpdateMergesPartialFields(t *testing.T) {
	svc := NewService(newMemoryStore(), nil)
	ctx := context.Background()

	p := seedProduct(t, svc, "P001", "Indomie Goreng", "Makanan", 3000, 150)

	newPrice := 3500.0
	updated, err := svc.Update(ctx, p.ID, UpdateProductRequest{SellingPrice: &newPrice})
	require.NoError(t, err)
	require.Equal(t, 3500.0, updated.SellingPrice)
	require.Equal(t, "Indomie Goreng", updated.Name)
	require.Equal(t, 150, updated.Stock)

	_, err = svc.Update(ctx, 99, UpdateProductRequest{SellingPrice: &newPrice})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteIsSoft(t *testing.T) {
	svc := NewService(newMemoryStore(), nil)
	ctx := context.Background()

	p := seedProduct(t, svc, "P001", "Indomie Goreng", "Makanan", 3000, 150)
	require.NoError(t, svc.Delete(ctx, p.ID))

	_, err := svc.Get(ctx, p.ID)
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, svc.Delete(ctx, p.ID), ErrNotFound)
}

func TestReserveAndReleaseStock(t *testing.T) {
	svc := NewService(newMemoryStore(), nil)
	ctx := context.Background()

	p := seedProduct(t, svc, "P001", "Indomie Goreng", "Makanan", 3000, 10)

	after, err := svc.ReserveStock(ctx, p.ID, 3)
	require.NoError(t, err)
	require.Equal(t, 7, after.Stock)

	_, err = svc.ReserveStock(ctx, p.ID, 8)
	require.ErrorIs(t, err, ErrInsufficientStock)

	current, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, 7, current.Stock)

	restored, err := svc.ReleaseStock(ctx, p.ID, 3)
	require.NoError(t, err)
	require.Equal(t, 10, restored.Stock)

	_, err = svc.ReserveStock(ctx, p.ID, 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestLowStock(t *testing.T) {
	svc := NewService(newMemoryStore(), nil)
	ctx := context.Background()

	seedProduct(t, svc, "P001", "Indomie Goreng", "Makanan", 3000, 150)
	low := seedProduct(t, svc, "P002", "Teh Pucuk Harum", "Minuman", 4000, 3)

	products, err := svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, low.Code, products[0].Code)
	require.True(t, products[0].IsLowStock())
}
