// Package scheduler holds the background services of an instance: the
// schedule promoter with peer fencing, and the worker pool that leases and
// executes jobs.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/irisqo/irisqo/internal/metrics"
	"github.com/irisqo/irisqo/internal/repository"
)

const (
	// TickInterval paces the promoter loop.
	TickInterval = 5 * time.Second
	// InstanceTTL is the heartbeat age after which a peer counts as dead.
	InstanceTTL = 30 * time.Second
)

// Scheduler runs the periodic maintenance tick: heartbeat this instance,
// fence expired peers (re-opening their leases), and promote due scheduled
// jobs into the queue. Every instance runs one; the single-statement
// repository transitions make concurrent tickers safe.
type Scheduler struct {
	instanceID string
	queue      repository.QueueRepository
	instances  repository.InstanceRepository
	logger     *slog.Logger
}

func New(
	instanceID string,
	queue repository.QueueRepository,
	instances repository.InstanceRepository,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		instanceID: instanceID,
		queue:      queue,
		instances:  instances,
		logger:     logger.With("component", "scheduler"),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	s.logger.Info("scheduler started", "tick", TickInterval, "instance_ttl", InstanceTTL)

	// First tick immediately so the instance is visible before the first
	// interval elapses.
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick keeps going past individual failures: a missed heartbeat or a failed
// promotion is retried on the next interval, not fatal.
func (s *Scheduler) tick(ctx context.Context) {
	start := time.Now()
	defer func() {
		metrics.SchedulerTickDuration.Observe(time.Since(start).Seconds())
	}()

	if err := s.instances.Live(ctx, s.instanceID); err != nil {
		s.logger.Error("heartbeat", "error", err)
	}

	fenced, err := s.instances.KillExpired(ctx, InstanceTTL)
	if err != nil {
		s.logger.Error("fence expired instances", "error", err)
	} else if fenced > 0 {
		metrics.InstancesFencedTotal.Add(float64(fenced))
		s.logger.Warn("fenced expired instances", "count", fenced)
	}

	// Drain everything due, one batch per statement.
	for {
		promoted, err := s.queue.EnqueueScheduled(ctx, s.instanceID)
		if err != nil {
			s.logger.Error("promote scheduled jobs", "error", err)
			return
		}
		if promoted == 0 {
			return
		}
		metrics.ScheduledPromotedTotal.Add(float64(promoted))
		s.logger.Info("promoted scheduled jobs", "count", promoted)
	}
}

// shutdown marks this instance dead so peers re-open its leases right away
// instead of waiting out the TTL.
func (s *Scheduler) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.instances.Kill(ctx, s.instanceID); err != nil {
		s.logger.Error("mark instance dead", "error", err)
	}
	s.logger.Info("scheduler shut down")
}
