package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskStockAlertScan scans the catalog for low-stock products.
	TaskStockAlertScan = "stock:alert-scan"
	// TaskOverdueScan scans the ledger for overdue credit transactions.
	TaskOverdueScan = "ledger:overdue-scan"
	// TaskReportsWarmup precomputes the dashboard aggregate into Redis.
	TaskReportsWarmup = "reports:cache-warmup"
	// TaskIdempotencyCleanup prunes processed idempotency keys.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// IdempotencyCleanupPayload controls how far back keys are kept.
type IdempotencyCleanupPayload struct {
	RetentionHours int `json:"retention_hours"`
}

// NewStockAlertScanTask constructs the low-stock scan task.
func NewStockAlertScanTask() *asynq.Task {
	return asynq.NewTask(TaskStockAlertScan, nil)
}

// NewOverdueScanTask constructs the overdue-credit scan task.
func NewOverdueScanTask() *asynq.Task {
	return asynq.NewTask(TaskOverdueScan, nil)
}

// NewReportsWarmupTask constructs the cache warmup task.
func NewReportsWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskReportsWarmup, nil)
}

// NewIdempotencyCleanupTask constructs the key cleanup task.
func NewIdempotencyCleanupTask(payload IdempotencyCleanupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIdempotencyCleanup, data), nil
}
