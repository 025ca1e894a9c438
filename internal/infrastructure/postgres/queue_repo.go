package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/irisqo/irisqo/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
)

// enqueueBatch bounds how many due scheduled rows one promotion tick moves.
const enqueueBatch = 1000

// QueueRepository implements the queue state machine over the jobs,
// scheduled, enqueued, processed, schedules and history tables. Every
// transition is a single CTE-chained statement; work selection uses
// FOR UPDATE SKIP LOCKED so instances never fight over rows.
type QueueRepository struct {
	pool *pgxpool.Pool
}

func NewQueueRepository(pool *pgxpool.Pool) *QueueRepository {
	return &QueueRepository{pool: pool}
}

func (r *QueueRepository) Create(ctx context.Context, job domain.JobCreate, instanceID string) (*domain.JobCreated, error) {
	var created *domain.JobCreated
	var err error
	switch {
	case job.Schedule != nil:
		created, err = r.createWithSchedule(ctx, job, instanceID)
	case job.At != nil:
		created, err = r.createAt(ctx, job, instanceID)
	default:
		created, err = r.createEnqueue(ctx, job, instanceID)
	}
	if err == nil {
		return created, nil
	}

	// Unique violation on external_id: the job already exists, return it.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation && job.ExternalID != nil {
		existing, lookupErr := r.getByExternalID(ctx, *job.ExternalID)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if existing != nil {
			return existing, nil
		}
	}
	return nil, err
}

func (r *QueueRepository) createEnqueue(ctx context.Context, job domain.JobCreate, instanceID string) (*domain.JobCreated, error) {
	const query = `
	WITH a AS (
		INSERT INTO jobs(meta, headers, body, external_id) VALUES ($1, $2, $3, $4) RETURNING id
	), hist AS (
		INSERT INTO history SELECT id, 0 AS retry, $5 AS instance_id, now() AS at, 'enqueued'::history_status AS status FROM a RETURNING id
	)
	INSERT INTO enqueued SELECT id FROM a RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		job.Meta, job.Headers, nullableBytes(job.Body), job.ExternalID, instanceID,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create enqueue: %w", err)
	}
	return &domain.JobCreated{ID: id, ExternalID: job.ExternalID}, nil
}

func (r *QueueRepository) createAt(ctx context.Context, job domain.JobCreate, instanceID string) (*domain.JobCreated, error) {
	const query = `
	WITH a AS (
		INSERT INTO jobs(meta, headers, body, external_id) VALUES ($1, $2, $3, $4) RETURNING id
	), hist AS (
		INSERT INTO history SELECT id, 0 AS retry, $6 AS instance_id, now() AS at, 'scheduled'::history_status AS status FROM a RETURNING id
	)
	INSERT INTO scheduled SELECT id, $5 AS at FROM a RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		job.Meta, job.Headers, nullableBytes(job.Body), job.ExternalID, *job.At, instanceID,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create at: %w", err)
	}
	return &domain.JobCreated{ID: id, ExternalID: job.ExternalID}, nil
}

func (r *QueueRepository) createWithSchedule(ctx context.Context, job domain.JobCreate, instanceID string) (*domain.JobCreated, error) {
	const query = `
	WITH a AS (
		INSERT INTO jobs(meta, headers, body, schedule_id, external_id) VALUES ($1, $2, $3, $6, $4) RETURNING id
	), b AS (
		INSERT INTO schedules SELECT $6 AS schedule_id, $7 AS schedule, $8 AS until, id AS next_id, $5 AS next_at FROM a RETURNING next_id
	), hist AS (
		INSERT INTO history SELECT id, 0 AS retry, $9 AS instance_id, now() AS at, 'scheduled'::history_status AS status FROM a RETURNING id
	)
	INSERT INTO scheduled SELECT id, $5 AS at FROM a RETURNING id`

	after := domain.NowSecs()
	if job.At != nil {
		after = *job.At
	}
	at, ok := job.Schedule.Next(after, job.Until)
	if !ok {
		return nil, &domain.InvalidParamsError{Name: "schedule"}
	}
	scheduleID := ulid.Make().String()

	var id int64
	err := r.pool.QueryRow(ctx, query,
		job.Meta, job.Headers, nullableBytes(job.Body), job.ExternalID,
		at, scheduleID, job.Schedule.String(), job.Until, instanceID,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create with schedule: %w", err)
	}
	return &domain.JobCreated{ID: id, ScheduleID: &scheduleID, ExternalID: job.ExternalID}, nil
}

func (r *QueueRepository) GetByID(ctx context.Context, jobID int64) (*domain.JobRow, error) {
	const query = `
	SELECT id, meta, COALESCE(headers, '{}'::jsonb), body, schedule_id, external_id
	FROM jobs WHERE id = $1`

	var j domain.JobRow
	err := r.pool.QueryRow(ctx, query, jobID).Scan(
		&j.ID, &j.Meta, &j.Headers, &j.Body, &j.ScheduleID, &j.ExternalID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &j, nil
}

func (r *QueueRepository) getByExternalID(ctx context.Context, externalID string) (*domain.JobCreated, error) {
	const query = `SELECT id, schedule_id, external_id FROM jobs WHERE external_id = $1`

	var j domain.JobCreated
	err := r.pool.QueryRow(ctx, query, externalID).Scan(&j.ID, &j.ScheduleID, &j.ExternalID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get job by external id: %w", err)
	}
	return &j, nil
}

func (r *QueueRepository) Delete(ctx context.Context, jobID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, jobID)
	if err != nil {
		return 0, fmt.Errorf("delete job: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *QueueRepository) CloneScheduleAt(ctx context.Context, jobID, at int64, instanceID string) (int64, error) {
	const query = `
	WITH a AS (
		INSERT INTO jobs(meta, headers, body, schedule_id)
		SELECT meta, headers, body, schedule_id
		FROM jobs
		WHERE id = $1
		RETURNING id, schedule_id
	), b AS (
		UPDATE schedules
		SET next_id = a.id, next_at = $2
		FROM a
		WHERE schedules.schedule_id = a.schedule_id
	), hist AS (
		INSERT INTO history SELECT id, 0 AS retry, $3 AS instance_id, now() AS at, 'scheduled'::history_status AS status FROM a RETURNING id
	)
	INSERT INTO scheduled SELECT id, $2 AS at FROM a RETURNING id`

	var id int64
	if err := r.pool.QueryRow(ctx, query, jobID, at, instanceID).Scan(&id); err != nil {
		return 0, fmt.Errorf("clone schedule: %w", err)
	}
	return id, nil
}

func (r *QueueRepository) EnqueueScheduled(ctx context.Context, instanceID string) (int64, error) {
	const query = `
	WITH a AS (
		SELECT id, retry FROM scheduled
		WHERE at <= extract(epoch FROM now())::bigint
		ORDER BY retry, id
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	), b AS (
		INSERT INTO enqueued SELECT id, retry FROM a RETURNING id
	), hist AS (
		INSERT INTO history SELECT id, retry, $2 AS instance_id, now() AS at, 'enqueued'::history_status AS status FROM a RETURNING id
	)
	DELETE FROM scheduled WHERE id = ANY(SELECT id FROM b)`

	tag, err := r.pool.Exec(ctx, query, enqueueBatch, instanceID)
	if err != nil {
		return 0, fmt.Errorf("enqueue scheduled: %w", err)
	}
	return tag.RowsAffected(), nil
}

const leaseQuery = `
	WITH a AS (
		SELECT id, retry FROM enqueued
		WHERE lock_at IS NULL
		ORDER BY retry, id
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	), hist AS (
		INSERT INTO history SELECT id, retry, $2 AS instance_id, now() AS at, 'assigned'::history_status AS status FROM a RETURNING id
	)
	UPDATE enqueued SET instance_id = $2, lock_at = now()
	WHERE id = ANY(SELECT id FROM a)
	RETURNING id, retry`

func (r *QueueRepository) Lease(ctx context.Context, instanceID string, limit int) ([]domain.JobEntry, error) {
	rows, err := r.pool.Query(ctx, leaseQuery, limit, instanceID)
	if err != nil {
		return nil, fmt.Errorf("lease: %w", err)
	}
	defer rows.Close()

	var entries []domain.JobEntry
	for rows.Next() {
		var e domain.JobEntry
		if err := rows.Scan(&e.ID, &e.Retry); err != nil {
			return nil, fmt.Errorf("scan lease: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *QueueRepository) LeaseOne(ctx context.Context, instanceID string) (*domain.JobEntry, error) {
	var e domain.JobEntry
	err := r.pool.QueryRow(ctx, leaseQuery, 1, instanceID).Scan(&e.ID, &e.Retry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lease one: %w", err)
	}
	return &e, nil
}

func (r *QueueRepository) Unlock(ctx context.Context, jobID int64, instanceID string) error {
	const query = `
	WITH a AS (
		UPDATE enqueued SET instance_id = NULL, lock_at = NULL, retry = retry + 1
		WHERE id = $1
		RETURNING id, retry
	)
	INSERT INTO history SELECT id, retry, $2 AS instance_id, now() AS at, 'retried'::history_status AS status FROM a RETURNING id`

	if _, err := r.pool.Exec(ctx, query, jobID, instanceID); err != nil {
		return fmt.Errorf("unlock: %w", err)
	}
	return nil
}

func (r *QueueRepository) Retry(ctx context.Context, jobID, at int64) error {
	const query = `
	WITH a AS (
		DELETE FROM enqueued WHERE id = $1 RETURNING id, retry, instance_id
	), hist AS (
		INSERT INTO history SELECT id, (retry + 1) AS retry, instance_id, now() AS at, 'retried'::history_status AS status FROM a RETURNING id
	)
	INSERT INTO scheduled SELECT id, $2 AS at, (retry + 1) AS retry FROM a RETURNING id`

	if _, err := r.pool.Exec(ctx, query, jobID, at); err != nil {
		return fmt.Errorf("retry: %w", err)
	}
	return nil
}

func (r *QueueRepository) Processed(ctx context.Context, jobID int64, result domain.JobResult) error {
	const query = `
	WITH a AS (
		DELETE FROM enqueued WHERE id = $1 RETURNING id, retry, instance_id
	), hist AS (
		INSERT INTO history SELECT id, retry, instance_id, now() AS at, $2::history_status AS status FROM a RETURNING id
	)
	INSERT INTO processed SELECT id, retry, instance_id, now() AS at, $2::processed_status AS status, $3 AS meta, $4 AS headers, $5 AS body FROM a RETURNING id`

	status := string(result.Meta.Status())
	_, err := r.pool.Exec(ctx, query,
		jobID, status, result.Meta, result.Headers, nullableBytes(result.Body),
	)
	if err != nil {
		return fmt.Errorf("processed: %w", err)
	}
	return nil
}

// nullableBytes maps an empty body to SQL NULL.
func nullableBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return b
}
