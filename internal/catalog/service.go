package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/warungpos/warungpos/internal/shared"
)

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates catalog operations.
type Service struct {
	store Store
	audit AuditPort
}

// NewService builds Service.
func NewService(store Store, audit AuditPort) *Service {
	return &Service{store: store, audit: audit}
}

// Search lists active products matching query and category. The literal
// category "all" (or empty) means no category filter.
func (s *Service) Search(ctx context.Context, query, category string) ([]Product, error) {
	return s.store.Search(ctx, strings.TrimSpace(query), strings.TrimSpace(category))
}

// Get fetches one product.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, ErrNotFound
	}
	return s.store.Get(ctx, id)
}

// Create registers a new product. Negative monetary or stock inputs are
// coerced to zero rather than rejected.
func (s *Service) Create(ctx context.Context, req CreateProductRequest) (Product, error) {
	if strings.TrimSpace(req.Code) == "" {
		return Product{}, fmt.Errorf("%w: code is required", ErrValidation)
	}
	if strings.TrimSpace(req.Name) == "" {
		return Product{}, fmt.Errorf("%w: name is required", ErrValidation)
	}

	product := Product{
		Code:          strings.TrimSpace(req.Code),
		Name:          strings.TrimSpace(req.Name),
		Category:      req.Category,
		PurchasePrice: clampAmount(req.PurchasePrice),
		SellingPrice:  clampAmount(req.SellingPrice),
		Stock:         clampQty(req.Stock),
		Unit:          req.Unit,
		MinStock:      clampQty(req.MinStock),
	}

	created, err := s.store.Create(ctx, product)
	if err != nil {
		return Product{}, err
	}
	s.recordAudit(ctx, "catalog:create", created.ID, map[string]any{"code": created.Code})
	return created, nil
}

// Update merges the provided fields into the existing product.
func (s *Service) Update(ctx context.Context, id int64, req UpdateProductRequest) (Product, error) {
	product, err := s.store.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return Product{}, fmt.Errorf("%w: name is required", ErrValidation)
		}
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.PurchasePrice != nil {
		product.PurchasePrice = clampAmount(*req.PurchasePrice)
	}
	if req.SellingPrice != nil {
		product.SellingPrice = clampAmount(*req.SellingPrice)
	}
	if req.Stock != nil {
		product.Stock = clampQty(*req.Stock)
	}
	if req.Unit != nil {
		product.Unit = *req.Unit
	}
	if req.MinStock != nil {
		product.MinStock = clampQty(*req.MinStock)
	}

	if err := s.store.Update(ctx, product); err != nil {
		return Product{}, err
	}
	s.recordAudit(ctx, "catalog:update", product.ID, map[string]any{"code": product.Code})
	return product, nil
}

// Delete soft-deletes the product so historical sale line snapshots keep a
// valid reference.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.store.Deactivate(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "catalog:delete", id, nil)
	return nil
}

// ReserveStock decrements stock by quantity. This is the invariant-preserving
// primitive callers use instead of writing stock directly; the check and the
// decrement happen as one guarded step in the store.
func (s *Service) ReserveStock(ctx context.Context, id int64, quantity int) (Product, error) {
	if quantity <= 0 {
		return Product{}, ErrInvalidQuantity
	}
	return s.store.AdjustStock(ctx, id, -quantity)
}

// ReleaseStock returns previously reserved units, used to roll back a failed
// multi-line commit.
func (s *Service) ReleaseStock(ctx context.Context, id int64, quantity int) (Product, error) {
	if quantity <= 0 {
		return Product{}, ErrInvalidQuantity
	}
	return s.store.AdjustStock(ctx, id, quantity)
}

// LowStock lists products at or below their minimum stock threshold.
func (s *Service) LowStock(ctx context.Context) ([]Product, error) {
	return s.store.LowStock(ctx)
}

// All lists every active product, used by backup export.
func (s *Service) All(ctx context.Context) ([]Product, error) {
	return s.store.All(ctx)
}

func (s *Service) recordAudit(ctx context.Context, action string, id int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "product",
		EntityID: fmt.Sprintf("%d", id),
		Meta:     meta,
	})
}

func clampAmount(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

func clampQty(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
