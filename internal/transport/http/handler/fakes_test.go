package handler_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/irisqo/irisqo/internal/domain"
	"github.com/irisqo/irisqo/internal/health"
	httptransport "github.com/irisqo/irisqo/internal/transport/http"
	"github.com/irisqo/irisqo/internal/transport/http/handler"
	"github.com/prometheus/client_golang/prometheus"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type fakeQueue struct {
	created   []domain.JobCreate
	createRes domain.JobCreated
	createErr error

	job        *domain.JobRow
	deleteRows int64
}

func (f *fakeQueue) Create(_ context.Context, job domain.JobCreate, _ string) (*domain.JobCreated, error) {
	f.created = append(f.created, job)
	if f.createErr != nil {
		return nil, f.createErr
	}
	res := f.createRes
	return &res, nil
}

func (f *fakeQueue) GetByID(_ context.Context, jobID int64) (*domain.JobRow, error) {
	if f.job == nil || f.job.ID != jobID {
		return nil, nil
	}
	job := *f.job
	return &job, nil
}

func (f *fakeQueue) Delete(_ context.Context, _ int64) (int64, error) {
	return f.deleteRows, nil
}

func (f *fakeQueue) CloneScheduleAt(_ context.Context, _, _ int64, _ string) (int64, error) {
	panic("not used")
}

func (f *fakeQueue) EnqueueScheduled(_ context.Context, _ string) (int64, error) {
	panic("not used")
}

func (f *fakeQueue) Lease(_ context.Context, _ string, _ int) ([]domain.JobEntry, error) {
	panic("not used")
}

func (f *fakeQueue) LeaseOne(_ context.Context, _ string) (*domain.JobEntry, error) {
	panic("not used")
}

func (f *fakeQueue) Unlock(_ context.Context, _ int64, _ string) error { panic("not used") }
func (f *fakeQueue) Retry(_ context.Context, _, _ int64) error         { panic("not used") }
func (f *fakeQueue) Processed(_ context.Context, _ int64, _ domain.JobResult) error {
	panic("not used")
}

type fakeHistory struct {
	rows []domain.HistoryRow
}

func (f *fakeHistory) ListByJobID(_ context.Context, _ int64, _, _ int32) ([]domain.HistoryRow, error) {
	return f.rows, nil
}

type fakeResults struct {
	result *domain.JobResult
}

func (f *fakeResults) GetByID(_ context.Context, _ int64) (*domain.JobResult, error) {
	if f.result == nil {
		return nil, nil
	}
	res := *f.result
	return &res, nil
}

type fakeSchedules struct {
	rows        []domain.ScheduleRow
	row         *domain.ScheduleRow
	disableRows int64
	disabled    []string
}

func (f *fakeSchedules) GetByID(_ context.Context, scheduleID string) (*domain.ScheduleRow, error) {
	if f.row == nil || f.row.ScheduleID != scheduleID {
		return nil, nil
	}
	row := *f.row
	return &row, nil
}

func (f *fakeSchedules) List(_ context.Context, _, _ int32) ([]domain.ScheduleRow, error) {
	return f.rows, nil
}

func (f *fakeSchedules) Disable(_ context.Context, scheduleID string) (int64, error) {
	f.disabled = append(f.disabled, scheduleID)
	return f.disableRows, nil
}

type fakeInstances struct {
	rows []domain.InstanceRow
}

func (f *fakeInstances) Live(_ context.Context, _ string) error { panic("not used") }
func (f *fakeInstances) Kill(_ context.Context, _ string) error { panic("not used") }
func (f *fakeInstances) KillExpired(_ context.Context, _ time.Duration) (int64, error) {
	panic("not used")
}

func (f *fakeInstances) List(_ context.Context, _, _ int32) ([]domain.InstanceRow, error) {
	return f.rows, nil
}

type fakePinger struct{ err error }

func (p *fakePinger) Ping(_ context.Context) error { return p.err }

type testDeps struct {
	queue     *fakeQueue
	history   *fakeHistory
	results   *fakeResults
	schedules *fakeSchedules
	instances *fakeInstances
	pinger    *fakePinger
}

func newTestRouter(deps *testDeps) *gin.Engine {
	logger := slog.Default()
	checker := health.NewChecker(deps.pinger, logger, prometheus.NewRegistry())
	return httptransport.NewRouter(
		logger,
		checker,
		handler.NewIngestHandler("test:1", deps.queue, 3000, logger),
		handler.NewJobHandler(deps.queue, deps.history, logger),
		handler.NewResultHandler(deps.results, logger),
		handler.NewScheduleHandler(deps.schedules, logger),
		handler.NewInstanceHandler(deps.instances, logger),
	)
}

func defaultDeps() *testDeps {
	return &testDeps{
		queue:     &fakeQueue{createRes: domain.JobCreated{ID: 7}},
		history:   &fakeHistory{},
		results:   &fakeResults{},
		schedules: &fakeSchedules{},
		instances: &fakeInstances{},
		pinger:    &fakePinger{},
	}
}

func perform(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}
