package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/irisqo/irisqo/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ResultRepository struct {
	pool *pgxpool.Pool
}

func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

func (r *ResultRepository) GetByID(ctx context.Context, jobID int64) (*domain.JobResult, error) {
	const query = `
	SELECT meta, COALESCE(headers, '{}'::jsonb), body
	FROM processed WHERE id = $1`

	var res domain.JobResult
	err := r.pool.QueryRow(ctx, query, jobID).Scan(&res.Meta, &res.Headers, &res.Body)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get result: %w", err)
	}
	return &res, nil
}
