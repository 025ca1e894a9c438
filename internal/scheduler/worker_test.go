package scheduler_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/irisqo/irisqo/internal/domain"
	"github.com/irisqo/irisqo/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_ProcessesLeasedEntries(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	queue := &fakeQueue{
		job: httpJob(http.MethodGet, srv.URL, 1000),
		leaseRounds: [][]domain.JobEntry{
			{{ID: 1}, {ID: 1}, {ID: 1}},
		},
	}
	runner := newRunner(queue, &fakeSchedules{})
	pool := scheduler.NewPool("test:1", queue, runner, 2, 8, 10*time.Millisecond, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pool.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		queue.mu.Lock()
		defer queue.mu.Unlock()
		return len(queue.processed) == 3
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not shut down")
	}

	assert.Equal(t, int64(3), hits.Load())
}

func TestPool_ShutdownDrainsWorkers(t *testing.T) {
	queue := &fakeQueue{} // empty queue, producer just polls
	runner := newRunner(queue, &fakeSchedules{})
	pool := scheduler.NewPool("test:1", queue, runner, 4, 8, 10*time.Millisecond, slog.Default())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pool.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not shut down")
	}
}
