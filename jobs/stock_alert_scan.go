package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/warungpos/warungpos/internal/catalog"
	jobmetrics "github.com/warungpos/warungpos/internal/jobs"
)

// CatalogScanner lists products at or below their minimum stock.
type CatalogScanner interface {
	LowStock(ctx context.Context) ([]catalog.Product, error)
}

// StockAlertScanJob logs products that need restocking. The scan is a derived
// view; nothing is persisted.
type StockAlertScanJob struct {
	Catalog CatalogScanner
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewStockAlertScanJob initialises the low-stock scan handler.
func NewStockAlertScanJob(catalogPort CatalogScanner, logger *slog.Logger, metrics *jobmetrics.Metrics) *StockAlertScanJob {
	return &StockAlertScanJob{Catalog: catalogPort, Logger: logger, Metrics: metrics}
}

// Handle executes the low-stock scan.
func (j *StockAlertScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Catalog == nil {
		return errors.New("stock alert scan: handler not configured")
	}
	tracker := j.Metrics.Track(TaskStockAlertScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	products, err := j.Catalog.LowStock(ctx)
	if err != nil {
		resultErr = err
		j.logger().Error("low stock scan failed", slog.Any("error", err))
		return resultErr
	}

	for _, p := range products {
		j.logger().Warn("product low on stock",
			slog.String("code", p.Code),
			slog.String("name", p.Name),
			slog.Int("stock", p.Stock),
			slog.Int("min_stock", p.MinStock))
	}
	j.Metrics.AddAlerts("low_stock", len(products))
	j.logger().Info("low stock scan done", slog.Int("alerts", len(products)))
	return nil
}

func (j *StockAlertScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
