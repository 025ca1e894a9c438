package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/irisqo/irisqo/internal/domain"
	"github.com/irisqo/irisqo/internal/metrics"
	"github.com/irisqo/irisqo/internal/repository"
)

// Pool leases jobs and fans them out to a fixed set of worker goroutines.
// The hand-off channel holds a single entry, so the producer blocks while
// workers are saturated and leases at most one prefetch batch ahead of the
// actual execution rate.
type Pool struct {
	instanceID   string
	queue        repository.QueueRepository
	runner       *Runner
	workers      int
	prefetch     int
	pollInterval time.Duration
	logger       *slog.Logger
}

func NewPool(
	instanceID string,
	queue repository.QueueRepository,
	runner *Runner,
	workers, prefetch int,
	pollInterval time.Duration,
	logger *slog.Logger,
) *Pool {
	return &Pool{
		instanceID:   instanceID,
		queue:        queue,
		runner:       runner,
		workers:      workers,
		prefetch:     prefetch,
		pollInterval: pollInterval,
		logger:       logger.With("component", "worker_pool"),
	}
}

// Start runs the producer loop until ctx is cancelled, then closes the
// hand-off channel and waits for in-flight jobs to finish. Jobs execute
// under a context detached from ctx so shutdown never aborts a run half-way;
// their own per-job timeouts still apply.
func (p *Pool) Start(ctx context.Context) {
	entries := make(chan domain.JobEntry, 1)
	runCtx := context.WithoutCancel(ctx)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range entries {
				metrics.JobsInFlight.Inc()
				p.runner.Run(runCtx, entry)
				metrics.JobsInFlight.Dec()
			}
		}()
	}

	p.logger.Info("worker pool started", "workers", p.workers, "poll_interval", p.pollInterval)

	p.produce(ctx, entries)

	close(entries)
	wg.Wait()
	p.logger.Info("worker pool shut down")
}

func (p *Pool) produce(ctx context.Context, entries chan<- domain.JobEntry) {
	for {
		leased, err := p.queue.Lease(ctx, p.instanceID, p.prefetch)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Error("lease jobs", "error", err)
			if !p.sleep(ctx) {
				return
			}
			continue
		}
		if len(leased) == 0 {
			// Queue empty; back off one poll interval.
			if !p.sleep(ctx) {
				return
			}
			continue
		}

		for _, entry := range leased {
			select {
			case entries <- entry:
			case <-ctx.Done():
				// These leases are already taken; hand them to workers anyway
				// so they run to completion instead of waiting out the TTL
				// fence.
				entries <- entry
			}
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (p *Pool) sleep(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(p.pollInterval):
		return true
	}
}
