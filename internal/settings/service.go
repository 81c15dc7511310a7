package settings

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/warungpos/warungpos/internal/catalog"
	"github.com/warungpos/warungpos/internal/ledger"
	"github.com/warungpos/warungpos/internal/sales"
	"github.com/warungpos/warungpos/internal/shared"
)

// CatalogPort supplies the full product list for backups.
type CatalogPort interface {
	All(ctx context.Context) ([]catalog.Product, error)
}

// LedgerPort supplies the full customer list for backups.
type LedgerPort interface {
	All(ctx context.Context) ([]ledger.Customer, error)
}

// SalesPort supplies the full sales history for backups.
type SalesPort interface {
	All(ctx context.Context) ([]sales.Sale, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service owns the store profile and full-state backup and restore.
type Service struct {
	store   Store
	catalog CatalogPort
	ledger  LedgerPort
	sales   SalesPort
	audit   AuditPort
	now     func() time.Time
}

// NewService builds Service.
func NewService(store Store, catalogPort CatalogPort, ledgerPort LedgerPort, salesPort SalesPort, audit AuditPort) *Service {
	return &Service{
		store:   store,
		catalog: catalogPort,
		ledger:  ledgerPort,
		sales:   salesPort,
		audit:   audit,
		now:     time.Now,
	}
}

// Get returns the current settings, falling back to defaults.
func (s *Service) Get(ctx context.Context) (Settings, error) {
	return s.store.Get(ctx)
}

// Update replaces the settings row.
func (s *Service) Update(ctx context.Context, in Settings) (Settings, error) {
	if strings.TrimSpace(in.StoreName) == "" {
		return Settings{}, fmt.Errorf("%w: store name is required", ErrValidation)
	}
	saved, err := s.store.Save(ctx, in)
	if err != nil {
		return Settings{}, err
	}
	s.recordAudit(ctx, "settings:update", map[string]any{"store_name": saved.StoreName})
	return saved, nil
}

// ReceiptHeader adapts settings into the header printed on receipts.
func (s *Service) ReceiptHeader(ctx context.Context) (sales.ReceiptHeader, error) {
	current, err := s.store.Get(ctx)
	if err != nil {
		return sales.ReceiptHeader{}, err
	}
	return sales.ReceiptHeader{
		StoreName: current.StoreName,
		Address:   current.Address,
		Phone:     current.Phone,
		Footer:    current.ReceiptFooter,
	}, nil
}

// Backup exports the complete store state as one document.
func (s *Service) Backup(ctx context.Context) (BackupDocument, error) {
	current, err := s.store.Get(ctx)
	if err != nil {
		return BackupDocument{}, err
	}
	products, err := s.catalog.All(ctx)
	if err != nil {
		return BackupDocument{}, err
	}
	customers, err := s.ledger.All(ctx)
	if err != nil {
		return BackupDocument{}, err
	}
	saleHistory, err := s.sales.All(ctx)
	if err != nil {
		return BackupDocument{}, err
	}

	doc := BackupDocument{
		Version:    BackupVersion,
		ExportedAt: s.now(),
		Settings:   current,
		Products:   products,
		Customers:  customers,
		Sales:      saleHistory,
	}
	s.recordAudit(ctx, "settings:backup", map[string]any{
		"products":  len(products),
		"customers": len(customers),
		"sales":     len(saleHistory),
	})
	return doc, nil
}

// Restore validates the backup envelope and replaces all state atomically.
func (s *Service) Restore(ctx context.Context, doc BackupDocument) error {
	if doc.Version != BackupVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrInvalidBackup, doc.Version)
	}
	if doc.ExportedAt.IsZero() {
		return fmt.Errorf("%w: missing exported_at", ErrInvalidBackup)
	}
	if strings.TrimSpace(doc.Settings.StoreName) == "" {
		return fmt.Errorf("%w: missing settings", ErrInvalidBackup)
	}
	if err := s.store.RestoreAll(ctx, doc); err != nil {
		return err
	}
	s.recordAudit(ctx, "settings:restore", map[string]any{
		"exported_at": doc.ExportedAt,
		"products":    len(doc.Products),
	})
	return nil
}

func (s *Service) recordAudit(ctx context.Context, action string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "settings",
		EntityID: "1",
		Meta:     meta,
	})
}
