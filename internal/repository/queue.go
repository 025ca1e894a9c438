package repository

import (
	"context"

	"github.com/irisqo/irisqo/internal/domain"
)

// QueueRepository exposes the atomic queue transitions. Every mutation is a
// single statement chaining CTEs over jobs/scheduled/enqueued/processed and
// the history journal, so the affected tables change together or not at all.
// Work selection always locks with SKIP LOCKED so concurrent instances
// partition the queue without contention.
//
// The scheduler, the worker pool and the HTTP handlers all depend on this
// interface; the pgx implementation lives in infrastructure/postgres.
type QueueRepository interface {
	// Create inserts the jobs row plus its enqueued/scheduled (and, for
	// recurring jobs, schedules) companion. On an external_id unique
	// violation it returns the existing job instead, so create is idempotent.
	Create(ctx context.Context, job domain.JobCreate, instanceID string) (*domain.JobCreated, error)

	// GetByID returns nil when the job does not exist.
	GetByID(ctx context.Context, jobID int64) (*domain.JobRow, error)
	Delete(ctx context.Context, jobID int64) (int64, error)

	// CloneScheduleAt copies the job row into a fresh id, points
	// schedules.next_id at it and schedules it at the given epoch second.
	// Used to advance a recurring schedule after a terminal outcome.
	CloneScheduleAt(ctx context.Context, jobID, at int64, instanceID string) (int64, error)

	// EnqueueScheduled promotes due scheduled rows into enqueued, up to the
	// promotion batch size, and returns the number moved.
	EnqueueScheduled(ctx context.Context, instanceID string) (int64, error)

	// Lease stamps up to limit free enqueued rows with (instanceID, now())
	// and returns them ordered by (retry, id). LeaseOne is the single-row
	// shape; it returns nil when the queue is empty.
	Lease(ctx context.Context, instanceID string, limit int) ([]domain.JobEntry, error)
	LeaseOne(ctx context.Context, instanceID string) (*domain.JobEntry, error)

	// Unlock clears the lease and bumps retry for immediate re-dispatch.
	Unlock(ctx context.Context, jobID int64, instanceID string) error

	// Retry moves the enqueued row back to scheduled at the given epoch
	// second with retry+1.
	Retry(ctx context.Context, jobID, at int64) error

	// Processed moves the enqueued row to its terminal processed record.
	// The persisted status is derived from the result variant.
	Processed(ctx context.Context, jobID int64, result domain.JobResult) error
}
