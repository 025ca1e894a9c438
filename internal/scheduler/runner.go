package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/irisqo/irisqo/internal/domain"
	"github.com/irisqo/irisqo/internal/metrics"
	"github.com/irisqo/irisqo/internal/repository"
)

// Runner drives one leased entry through its lifecycle: load the job,
// execute it, walk the retry ladder on failure, record the terminal result
// and advance the recurrence when the job belongs to a schedule.
type Runner struct {
	instanceID string
	queue      repository.QueueRepository
	schedules  repository.ScheduleRepository
	executor   *Executor
	logger     *slog.Logger
}

func NewRunner(
	instanceID string,
	queue repository.QueueRepository,
	schedules repository.ScheduleRepository,
	executor *Executor,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		instanceID: instanceID,
		queue:      queue,
		schedules:  schedules,
		executor:   executor,
		logger:     logger.With("component", "runner"),
	}
}

func (r *Runner) Run(ctx context.Context, entry domain.JobEntry) {
	logger := r.logger.With("job_id", entry.ID, "retry", entry.Retry)

	job, err := r.queue.GetByID(ctx, entry.ID)
	if err != nil {
		logger.Error("load job", "error", err)
		return
	}
	if job == nil {
		// Lease raced a delete; nothing left to run.
		logger.Warn("leased job no longer exists")
		return
	}

	start := time.Now()
	result, runErr := r.executor.Execute(ctx, job)
	elapsed := time.Since(start)

	if runErr == nil {
		metrics.JobExecutionDuration.WithLabelValues("success").Observe(elapsed.Seconds())
		r.finish(ctx, logger, job, result)
		logger.Info("job completed", "duration", elapsed)
		return
	}

	metrics.JobExecutionDuration.WithLabelValues("failure").Observe(elapsed.Seconds())

	if domain.Retryable(runErr) {
		if delay, ok := job.Meta.Retry.NextRetryIn(uint16(entry.Retry)); ok {
			r.retry(ctx, logger, entry, runErr, delay)
			return
		}
	}

	r.finish(ctx, logger, job, domain.ResultFromError(runErr))
	logger.Warn("job failed", "error", runErr, "duration", elapsed)
}

// retry re-dispatches the entry: zero delay unlocks it in place for the next
// lease, anything else parks it in scheduled.
func (r *Runner) retry(ctx context.Context, logger *slog.Logger, entry domain.JobEntry, runErr error, delay uint32) {
	if delay == 0 {
		if err := r.queue.Unlock(ctx, entry.ID, r.instanceID); err != nil {
			logger.Error("unlock for retry", "error", err)
			return
		}
		metrics.JobsRetriedTotal.WithLabelValues("immediate").Inc()
		logger.Warn("job failed, retrying immediately", "error", runErr)
		return
	}

	at := domain.NowSecs() + int64(delay)
	if err := r.queue.Retry(ctx, entry.ID, at); err != nil {
		logger.Error("schedule retry", "error", err)
		return
	}
	metrics.JobsRetriedTotal.WithLabelValues("delayed").Inc()
	logger.Warn("job failed, retrying later", "error", runErr, "delay_secs", delay)
}

// finish records the terminal outcome and, for recurring jobs, clones the
// next occurrence.
func (r *Runner) finish(ctx context.Context, logger *slog.Logger, job *domain.JobRow, result domain.JobResult) {
	if err := r.queue.Processed(ctx, job.ID, result); err != nil {
		logger.Error("record result", "error", err)
		return
	}
	metrics.JobsProcessedTotal.WithLabelValues(string(result.Meta.Status())).Inc()

	if job.ScheduleID != nil {
		r.advance(ctx, logger, job)
	}
}

// advance computes the next occurrence of the job's schedule from now and
// clones the job row at it. An inactive schedule, or one past its until
// bound, ends the recurrence.
func (r *Runner) advance(ctx context.Context, logger *slog.Logger, job *domain.JobRow) {
	logger = logger.With("schedule_id", *job.ScheduleID)

	row, err := r.schedules.GetByID(ctx, *job.ScheduleID)
	if err != nil {
		logger.Error("load schedule", "error", err)
		return
	}
	if row == nil || row.Inactive {
		return
	}

	sched, err := domain.ParseSchedule(row.Schedule)
	if err != nil {
		logger.Error("stored schedule does not parse", "schedule", row.Schedule)
		return
	}

	next, ok := sched.Next(domain.NowSecs(), row.Until)
	if !ok {
		logger.Info("schedule ran out")
		return
	}

	cloneID, err := r.queue.CloneScheduleAt(ctx, job.ID, next, r.instanceID)
	if err != nil {
		logger.Error("clone next occurrence", "error", err)
		return
	}
	logger.Info("scheduled next occurrence", "next_id", cloneID, "at", next)
}
