package repository

import (
	"context"

	"github.com/irisqo/irisqo/internal/domain"
)

type HistoryRepository interface {
	ListByJobID(ctx context.Context, jobID int64, limit, offset int32) ([]domain.HistoryRow, error)
}
