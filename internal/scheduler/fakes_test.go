package scheduler_test

import (
	"context"
	"sync"
	"time"

	"github.com/irisqo/irisqo/internal/domain"
)

// fakeQueue is an in-memory stand-in for the queue repository. Each call
// records its arguments; behaviour is steered through the public fields.
type fakeQueue struct {
	mu sync.Mutex

	job         *domain.JobRow
	leaseRounds [][]domain.JobEntry

	leased    int
	unlocked  []int64
	retried   []retryCall
	processed []processedCall
	cloned    []cloneCall
	enqueued  []int64
}

type retryCall struct {
	jobID int64
	at    int64
}

type processedCall struct {
	jobID  int64
	result domain.JobResult
}

type cloneCall struct {
	jobID int64
	at    int64
}

func (f *fakeQueue) Create(_ context.Context, _ domain.JobCreate, _ string) (*domain.JobCreated, error) {
	panic("not used")
}

func (f *fakeQueue) GetByID(_ context.Context, jobID int64) (*domain.JobRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.job == nil || f.job.ID != jobID {
		return nil, nil
	}
	job := *f.job
	return &job, nil
}

func (f *fakeQueue) Delete(_ context.Context, _ int64) (int64, error) { return 0, nil }

func (f *fakeQueue) CloneScheduleAt(_ context.Context, jobID, at int64, _ string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cloned = append(f.cloned, cloneCall{jobID: jobID, at: at})
	return jobID + 1, nil
}

func (f *fakeQueue) EnqueueScheduled(_ context.Context, _ string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.enqueued) == 0 {
		return 0, nil
	}
	n := f.enqueued[0]
	f.enqueued = f.enqueued[1:]
	return n, nil
}

func (f *fakeQueue) Lease(_ context.Context, _ string, _ int) ([]domain.JobEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.leased >= len(f.leaseRounds) {
		return nil, nil
	}
	entries := f.leaseRounds[f.leased]
	f.leased++
	return entries, nil
}

func (f *fakeQueue) LeaseOne(ctx context.Context, instanceID string) (*domain.JobEntry, error) {
	entries, err := f.Lease(ctx, instanceID, 1)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return &entries[0], nil
}

func (f *fakeQueue) Unlock(_ context.Context, jobID int64, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unlocked = append(f.unlocked, jobID)
	return nil
}

func (f *fakeQueue) Retry(_ context.Context, jobID, at int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retried = append(f.retried, retryCall{jobID: jobID, at: at})
	return nil
}

func (f *fakeQueue) Processed(_ context.Context, jobID int64, result domain.JobResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.processed = append(f.processed, processedCall{jobID: jobID, result: result})
	return nil
}

type fakeSchedules struct {
	mu       sync.Mutex
	row      *domain.ScheduleRow
	disabled []string
}

func (f *fakeSchedules) GetByID(_ context.Context, scheduleID string) (*domain.ScheduleRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.row == nil || f.row.ScheduleID != scheduleID {
		return nil, nil
	}
	row := *f.row
	return &row, nil
}

func (f *fakeSchedules) List(_ context.Context, _, _ int32) ([]domain.ScheduleRow, error) {
	return nil, nil
}

func (f *fakeSchedules) Disable(_ context.Context, scheduleID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disabled = append(f.disabled, scheduleID)
	return 1, nil
}

type fakeInstances struct {
	mu          sync.Mutex
	heartbeats  int
	killed      []string
	expiredHits int
	expired     int64
}

func (f *fakeInstances) Live(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.heartbeats++
	return nil
}

func (f *fakeInstances) Kill(_ context.Context, instanceID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.killed = append(f.killed, instanceID)
	return nil
}

func (f *fakeInstances) KillExpired(_ context.Context, _ time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expiredHits++
	return f.expired, nil
}

func (f *fakeInstances) List(_ context.Context, _, _ int32) ([]domain.InstanceRow, error) {
	return nil, nil
}
