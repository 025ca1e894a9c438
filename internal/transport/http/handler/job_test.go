package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/irisqo/irisqo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobGetByID(t *testing.T) {
	deps := defaultDeps()
	deps.queue.job = &domain.JobRow{
		ID: 7,
		Meta: domain.JobMeta{
			Protocol: domain.ProtocolHTTP,
			HTTP:     &domain.HTTPMeta{Method: "GET", URL: "http://upstream.local/x"},
			Timeout:  3000,
		},
	}
	r := newTestRouter(deps)

	rec := perform(r, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/7", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var job domain.JobRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &job))
	assert.Equal(t, int64(7), job.ID)
	assert.Equal(t, "http://upstream.local/x", job.Meta.HTTP.URL)
}

func TestJobGetByID_NotFound(t *testing.T) {
	rec := perform(newTestRouter(defaultDeps()), httptest.NewRequest(http.MethodGet, "/api/v1/jobs/7", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"title":"Not Found"`)
}

func TestJobGetByID_BadID(t *testing.T) {
	rec := perform(newTestRouter(defaultDeps()), httptest.NewRequest(http.MethodGet, "/api/v1/jobs/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJobDelete(t *testing.T) {
	deps := defaultDeps()
	deps.queue.deleteRows = 1
	rec := perform(newTestRouter(deps), httptest.NewRequest(http.MethodDelete, "/api/v1/jobs/7", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = perform(newTestRouter(defaultDeps()), httptest.NewRequest(http.MethodDelete, "/api/v1/jobs/7", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobHistory(t *testing.T) {
	deps := defaultDeps()
	instanceID := "host:01ARZ"
	deps.history.rows = []domain.HistoryRow{
		{ID: 7, Retry: 0, At: time.Now().UTC(), Status: domain.HistoryEnqueued},
		{ID: 7, Retry: 0, InstanceID: &instanceID, At: time.Now().UTC(), Status: domain.HistoryCompleted},
	}
	rec := perform(newTestRouter(deps), httptest.NewRequest(http.MethodGet, "/api/v1/jobs/7/history", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var rows []domain.HistoryRow
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 2)
	assert.Equal(t, domain.HistoryEnqueued, rows[0].Status)
	assert.Equal(t, domain.HistoryCompleted, rows[1].Status)
}

func TestJobHistory_EmptyIsArray(t *testing.T) {
	rec := perform(newTestRouter(defaultDeps()), httptest.NewRequest(http.MethodGet, "/api/v1/jobs/7/history", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())
}
