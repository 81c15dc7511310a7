package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/warungpos/warungpos/internal/ledger"
	jobmetrics "github.com/warungpos/warungpos/internal/jobs"
)

// LedgerScanner lists credit transactions past their due date.
type LedgerScanner interface {
	ListOverdue(ctx context.Context, asOf time.Time) ([]ledger.CreditTransaction, error)
}

// OverdueScanJob logs unpaid credit transactions past due. Like the stock
// scan it persists nothing.
type OverdueScanJob struct {
	Ledger  LedgerScanner
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewOverdueScanJob initialises the overdue-credit scan handler.
func NewOverdueScanJob(ledgerPort LedgerScanner, logger *slog.Logger, metrics *jobmetrics.Metrics) *OverdueScanJob {
	return &OverdueScanJob{Ledger: ledgerPort, Logger: logger, Metrics: metrics, clock: time.Now}
}

// Handle executes the overdue scan.
func (j *OverdueScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Ledger == nil {
		return errors.New("overdue scan: handler not configured")
	}
	tracker := j.Metrics.Track(TaskOverdueScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	now := time.Now()
	if j.clock != nil {
		now = j.clock()
	}
	overdue, err := j.Ledger.ListOverdue(ctx, now)
	if err != nil {
		resultErr = err
		j.logger().Error("overdue scan failed", slog.Any("error", err))
		return resultErr
	}

	for _, tx := range overdue {
		j.logger().Warn("credit transaction overdue",
			slog.Int64("customer_id", tx.CustomerID),
			slog.Float64("amount", tx.Amount),
			slog.Time("due_date", tx.DueDate))
	}
	j.Metrics.AddAlerts("overdue", len(overdue))
	j.logger().Info("overdue scan done", slog.Int("alerts", len(overdue)))
	return nil
}

func (j *OverdueScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
