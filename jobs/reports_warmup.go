package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/warungpos/warungpos/internal/jobs"
)

// ReportsWarmer precomputes the dashboard aggregate.
type ReportsWarmer interface {
	Invalidate(ctx context.Context) error
	Warmup(ctx context.Context) error
}

// ReportsWarmupJob refreshes the cached dashboard after a sale commit.
type ReportsWarmupJob struct {
	Reports ReportsWarmer
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewReportsWarmupJob initialises the cache warmup handler.
func NewReportsWarmupJob(reportsPort ReportsWarmer, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportsWarmupJob {
	return &ReportsWarmupJob{Reports: reportsPort, Logger: logger, Metrics: metrics}
}

// Handle invalidates stale aggregates and rebuilds today's dashboard.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("reports warmup: handler not configured")
	}
	tracker := j.Metrics.Track(TaskReportsWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	if err := j.Reports.Invalidate(ctx); err != nil {
		resultErr = err
		return resultErr
	}
	if err := j.Reports.Warmup(ctx); err != nil {
		resultErr = err
		return resultErr
	}
	j.logger().Info("dashboard cache warmed")
	return nil
}

func (j *ReportsWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
