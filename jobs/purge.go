package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/DonzTea/cms-crud-restful-api/internal/jobs"
	"github.com/DonzTea/cms-crud-restful-api/internal/platform/db"
)

// TaskPurgeResetTokens clears password reset tokens that have expired.
const TaskPurgeResetTokens = "auth:reset_tokens:purge"

// NewPurgeResetTokensTask constructs the periodic purge task.
func NewPurgeResetTokensTask() *asynq.Task {
	return asynq.NewTask(TaskPurgeResetTokens, nil)
}

// PurgeResetTokensJob removes stale reset tokens.
type PurgeResetTokensJob struct {
	db      db.Querier
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
	now     func() time.Time
}

// NewPurgeResetTokensJob constructs the job.
func NewPurgeResetTokensJob(q db.Querier, logger *slog.Logger, metrics *jobmetrics.Metrics) *PurgeResetTokensJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &PurgeResetTokensJob{db: q, logger: logger, metrics: metrics, now: time.Now}
}

// Handle runs one purge.
func (j *PurgeResetTokensJob) Handle(ctx context.Context, _ *asynq.Task) error {
	tracker := j.metrics.Track(TaskPurgeResetTokens)
	tag, err := j.db.Exec(ctx, `
		UPDATE users SET reset_password_token = NULL, reset_password_expires = NULL
		WHERE reset_password_token IS NOT NULL AND reset_password_expires <= $1`, j.now().UTC())
	if err != nil {
		return tracker.End(fmt.Errorf("purge reset tokens: %w", err))
	}
	j.logger.Info("reset tokens purged", slog.Int64("rows", tag.RowsAffected()))
	return tracker.End(nil)
}
