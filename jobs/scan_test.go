package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/warungpos/warungpos/internal/catalog"
	jobmetrics "github.com/warungpos/warungpos/internal/jobs"
	"github.com/warungpos/warungpos/internal/ledger"
)

type stubCatalog struct {
	products []catalog.Product
	err      error
}

func (s *stubCatalog) LowStock(ctx context.Context) ([]catalog.Product, error) {
	return s.products, s.err
}

type stubLedger struct {
	overdue []ledger.CreditTransaction
	asOf    time.Time
}

func (s *stubLedger) ListOverdue(ctx context.Context, asOf time.Time) ([]ledger.CreditTransaction, error) {
	s.asOf = asOf
	return s.overdue, nil
}

func TestStockAlertScan(t *testing.T) {
	reg := prometheus.NewRegistry()
	job := NewStockAlertScanJob(&stubCatalog{
		products: []catalog.Product{{Code: "P001", Name: "Indomie Goreng", Stock: 2, MinStock: 10}},
	}, nil, jobmetrics.NewMetrics(reg))

	err := job.Handle(context.Background(), asynq.NewTask(TaskStockAlertScan, nil))
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "warungpos_jobs_runs_total", "warungpos_job_alerts_total")
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestStockAlertScanPropagatesError(t *testing.T) {
	job := NewStockAlertScanJob(&stubCatalog{err: context.DeadlineExceeded}, nil, nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskStockAlertScan, nil))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

type stubCleaner struct {
	olderThan time.Duration
	pruned    int64
}

func (s *stubCleaner) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	s.olderThan = olderThan
	return s.pruned, nil
}

func TestIdempotencyCleanupDefaultsRetention(t *testing.T) {
	stub := &stubCleaner{pruned: 4}
	job := NewIdempotencyCleanupJob(stub, nil, nil)

	err := job.Handle(context.Background(), asynq.NewTask(TaskIdempotencyCleanup, nil))
	require.NoError(t, err)
	require.Equal(t, 48*time.Hour, stub.olderThan)
}

func TestOverdueScanUsesClock(t *testing.T) {
	stub := &stubLedger{overdue: []ledger.CreditTransaction{{CustomerID: 7, Amount: 50000}}}
	job := NewOverdueScanJob(stub, nil, nil)
	fixed := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	job.clock = func() time.Time { return fixed }

	err := job.Handle(context.Background(), asynq.NewTask(TaskOverdueScan, nil))
	require.NoError(t, err)
	require.Equal(t, fixed, stub.asOf)
}
