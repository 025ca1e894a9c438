package repository

import (
	"context"

	"github.com/irisqo/irisqo/internal/domain"
)

type ScheduleRepository interface {
	// GetByID returns nil when the schedule does not exist.
	GetByID(ctx context.Context, scheduleID string) (*domain.ScheduleRow, error)
	List(ctx context.Context, limit, offset int32) ([]domain.ScheduleRow, error)
	// Disable marks the schedule inactive; the row and its history stay.
	Disable(ctx context.Context, scheduleID string) (int64, error)
}
