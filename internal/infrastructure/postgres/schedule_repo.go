package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/irisqo/irisqo/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ScheduleRepository struct {
	pool *pgxpool.Pool
}

func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{pool: pool}
}

const scheduleColumns = `schedule_id, schedule, until, last_id, last_at, next_id, next_at, inactive`

func (r *ScheduleRepository) GetByID(ctx context.Context, scheduleID string) (*domain.ScheduleRow, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedules WHERE schedule_id = $1`, scheduleColumns)

	var s domain.ScheduleRow
	err := r.pool.QueryRow(ctx, query, scheduleID).Scan(
		&s.ScheduleID, &s.Schedule, &s.Until,
		&s.LastID, &s.LastAt, &s.NextID, &s.NextAt, &s.Inactive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return &s, nil
}

func (r *ScheduleRepository) List(ctx context.Context, limit, offset int32) ([]domain.ScheduleRow, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedules ORDER BY schedule_id LIMIT $1 OFFSET $2`, scheduleColumns)

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()

	var schedules []domain.ScheduleRow
	for rows.Next() {
		var s domain.ScheduleRow
		if err := rows.Scan(
			&s.ScheduleID, &s.Schedule, &s.Until,
			&s.LastID, &s.LastAt, &s.NextID, &s.NextAt, &s.Inactive,
		); err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

func (r *ScheduleRepository) Disable(ctx context.Context, scheduleID string) (int64, error) {
	const query = `UPDATE schedules SET inactive = TRUE WHERE schedule_id = $1`

	tag, err := r.pool.Exec(ctx, query, scheduleID)
	if err != nil {
		return 0, fmt.Errorf("disable schedule: %w", err)
	}
	return tag.RowsAffected(), nil
}
