package postgres

import (
	"context"
	"fmt"

	"github.com/irisqo/irisqo/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HistoryRepository struct {
	pool *pgxpool.Pool
}

func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

func (r *HistoryRepository) ListByJobID(ctx context.Context, jobID int64, limit, offset int32) ([]domain.HistoryRow, error) {
	const query = `
	SELECT id, retry, instance_id, at, status::text, message
	FROM history
	WHERE id = $1
	ORDER BY at
	LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, jobID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var history []domain.HistoryRow
	for rows.Next() {
		var h domain.HistoryRow
		if err := rows.Scan(&h.ID, &h.Retry, &h.InstanceID, &h.At, &h.Status, &h.Message); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
