package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/warungpos/warungpos/internal/jobs"
)

const defaultKeyRetentionHours = 48

// KeyCleaner prunes processed idempotency keys and reports how many were
// removed.
type KeyCleaner interface {
	Cleanup(ctx context.Context, olderThan time.Duration) (int64, error)
}

// IdempotencyCleanupJob prunes idempotency keys past retention.
type IdempotencyCleanupJob struct {
	Store   KeyCleaner
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewIdempotencyCleanupJob initialises the cleanup handler.
func NewIdempotencyCleanupJob(store KeyCleaner, logger *slog.Logger, metrics *jobmetrics.Metrics) *IdempotencyCleanupJob {
	return &IdempotencyCleanupJob{Store: store, Logger: logger, Metrics: metrics}
}

// Handle executes the cleanup.
func (j *IdempotencyCleanupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Store == nil {
		return errors.New("idempotency cleanup: handler not configured")
	}
	var payload IdempotencyCleanupPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	if payload.RetentionHours <= 0 {
		payload.RetentionHours = defaultKeyRetentionHours
	}

	tracker := j.Metrics.Track(TaskIdempotencyCleanup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	retention := time.Duration(payload.RetentionHours) * time.Hour
	pruned, err := j.Store.Cleanup(ctx, retention)
	if err != nil {
		resultErr = err
		j.logger().Error("idempotency cleanup failed", slog.Any("error", err))
		return resultErr
	}
	j.logger().Info("idempotency keys pruned",
		slog.Int64("deleted", pruned),
		slog.Int("retention_hours", payload.RetentionHours))
	return nil
}

func (j *IdempotencyCleanupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
