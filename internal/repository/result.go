package repository

import (
	"context"

	"github.com/irisqo/irisqo/internal/domain"
)

type ResultRepository interface {
	// GetByID returns the stored terminal result, or nil when the job has
	// not been processed yet.
	GetByID(ctx context.Context, jobID int64) (*domain.JobResult, error)
}
