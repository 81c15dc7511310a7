package settings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/warungpos/warungpos/internal/catalog"
	"github.com/warungpos/warungpos/internal/ledger"
	"github.com/warungpos/warungpos/internal/sales"
)

type memoryStore struct {
	current  *Settings
	restored *BackupDocument
}

func (m *memoryStore) Get(ctx context.Context) (Settings, error) {
	if m.current == nil {
		return Defaults(), nil
	}
	return *m.current, nil
}

func (m *memoryStore) Save(ctx context.Context, s Settings) (Settings, error) {
	s.UpdatedAt = time.Now()
	m.current = &s
	return s, nil
}

func (m *memoryStore) RestoreAll(ctx context.Context, doc BackupDocument) error {
	m.restored = &doc
	m.current = &doc.Settings
	return nil
}

type stubCatalog struct{ products []catalog.Product }

func (s *stubCatalog) All(ctx context.Context) ([]catalog.Product, error) { return s.products, nil }

type stubLedger struct{ customers []ledger.Customer }

func (s *stubLedger) All(ctx context.Context) ([]ledger.Customer, error) { return s.customers, nil }

type stubSales struct{ sales []sales.Sale }

func (s *stubSales) All(ctx context.Context) ([]sales.Sale, error) { return s.sales, nil }

func newTestService(store *memoryStore) *Service {
	return NewService(store,
		&stubCatalog{products: []catalog.Product{{ID: 1, Code: "P001", Name: "Indomie Goreng"}}},
		&stubLedger{customers: []ledger.Customer{{ID: 1, Name: "Ahmad Wijaya"}}},
		&stubSales{sales: []sales.Sale{{ID: 1, Code: "POS-abc12345"}}},
		nil)
}

func TestGetFallsBackToDefaults(t *testing.T) {
	svc := newTestService(&memoryStore{})

	current, err := svc.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "WarungPOS", current.StoreName)
	require.True(t, current.LowStockAlerts)
}

func TestUpdate(t *testing.T) {
	store := &memoryStore{}
	svc := newTestService(store)
	ctx := context.Background()

	saved, err := svc.Update(ctx, Settings{StoreName: "Warung Barokah", Phone: "021-555"})
	require.NoError(t, err)
	require.Equal(t, "Warung Barokah", saved.StoreName)

	current, err := svc.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "Warung Barokah", current.StoreName)

	_, err = svc.Update(ctx, Settings{StoreName: "  "})
	require.ErrorIs(t, err, ErrValidation)
}

func TestReceiptHeader(t *testing.T) {
	store := &memoryStore{}
	svc := newTestService(store)
	ctx := context.Background()

	_, err := svc.Update(ctx, Settings{StoreName: "Warung Barokah", Address: "Jl. Melati 5", ReceiptFooter: "Sampai jumpa"})
	require.NoError(t, err)

	header, err := svc.ReceiptHeader(ctx)
	require.NoError(t, err)
	require.Equal(t, "Warung Barokah", header.StoreName)
	require.Equal(t, "Jl. Melati 5", header.Address)
	require.Equal(t, "Sampai jumpa", header.Footer)
}

func TestBackupAndRestore(t *testing.T) {
	store := &memoryStore{}
	svc := newTestService(store)
	ctx := context.Background()

	doc, err := svc.Backup(ctx)
	require.NoError(t, err)
	require.Equal(t, BackupVersion, doc.Version)
	require.False(t, doc.ExportedAt.IsZero())
	require.Len(t, doc.Products, 1)
	require.Len(t, doc.Customers, 1)
	require.Len(t, doc.Sales, 1)

	require.NoError(t, svc.Restore(ctx, doc))
	require.NotNil(t, store.restored)
	require.Equal(t, doc.ExportedAt, store.restored.ExportedAt)
}

func TestRestoreRejectsBadEnvelope(t *testing.T) {
	store := &memoryStore{}
	svc := newTestService(store)
	ctx := context.Background()

	valid := BackupDocument{
		Version:    BackupVersion,
		ExportedAt: time.Now(),
		Settings:   Defaults(),
	}

	bad := valid
	bad.Version = 99
	require.ErrorIs(t, svc.Restore(ctx, bad), ErrInvalidBackup)

	bad = valid
	bad.ExportedAt = time.Time{}
	require.ErrorIs(t, svc.Restore(ctx, bad), ErrInvalidBackup)

	bad = valid
	bad.Settings.StoreName = ""
	require.ErrorIs(t, svc.Restore(ctx, bad), ErrInvalidBackup)

	require.Nil(t, store.restored)
}
