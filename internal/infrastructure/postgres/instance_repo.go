package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/irisqo/irisqo/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InstanceRepository struct {
	pool *pgxpool.Pool
}

func NewInstanceRepository(pool *pgxpool.Pool) *InstanceRepository {
	return &InstanceRepository{pool: pool}
}

func (r *InstanceRepository) Live(ctx context.Context, instanceID string) error {
	const query = `
	INSERT INTO instances(id) VALUES ($1)
	ON CONFLICT (id) DO UPDATE SET last_at = now()`

	if _, err := r.pool.Exec(ctx, query, instanceID); err != nil {
		return fmt.Errorf("instance live: %w", err)
	}
	return nil
}

func (r *InstanceRepository) Kill(ctx context.Context, instanceID string) error {
	const query = `UPDATE instances SET status = 'dead' WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, instanceID); err != nil {
		return fmt.Errorf("instance kill: %w", err)
	}
	return nil
}

// KillExpired fences peers whose heartbeat went stale and re-opens the
// leases they held: the enqueued rows become free again at retry+1, so
// another instance picks them up.
func (r *InstanceRepository) KillExpired(ctx context.Context, ttl time.Duration) (int64, error) {
	const query = `
	WITH d AS (
		UPDATE instances SET status = 'dead'
		WHERE status = 'live' AND last_at < now() - make_interval(secs => $1)
		RETURNING id
	), reopened AS (
		UPDATE enqueued SET instance_id = NULL, lock_at = NULL, retry = retry + 1
		WHERE instance_id IN (SELECT id FROM d)
		RETURNING id
	)
	SELECT count(*) FROM d`

	var fenced int64
	if err := r.pool.QueryRow(ctx, query, ttl.Seconds()).Scan(&fenced); err != nil {
		return 0, fmt.Errorf("instance kill expired: %w", err)
	}
	return fenced, nil
}

func (r *InstanceRepository) List(ctx context.Context, limit, offset int32) ([]domain.InstanceRow, error) {
	const query = `
	SELECT id, status::text, last_at FROM instances
	ORDER BY id DESC
	LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list instances: %w", err)
	}
	defer rows.Close()

	var instances []domain.InstanceRow
	for rows.Next() {
		var in domain.InstanceRow
		if err := rows.Scan(&in.ID, &in.Status, &in.LastAt); err != nil {
			return nil, fmt.Errorf("scan instance: %w", err)
		}
		instances = append(instances, in)
	}
	return instances, rows.Err()
}
