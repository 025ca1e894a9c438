package repository

import (
	"context"
	"time"

	"github.com/irisqo/irisqo/internal/domain"
)

type InstanceRepository interface {
	// Live upserts the heartbeat row for this instance.
	Live(ctx context.Context, instanceID string) error
	// Kill marks the named instance dead. Called on graceful shutdown.
	Kill(ctx context.Context, instanceID string) error
	// KillExpired fences every live instance whose heartbeat is older than
	// ttl and re-opens the leases it held, so abandoned work re-enters the
	// pool. Returns the number of instances fenced.
	KillExpired(ctx context.Context, ttl time.Duration) (int64, error)
	List(ctx context.Context, limit, offset int32) ([]domain.InstanceRow, error)
}
