package scheduler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/irisqo/irisqo/internal/domain"
	"github.com/irisqo/irisqo/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func httpJob(method, url string, timeoutMS uint32) *domain.JobRow {
	return &domain.JobRow{
		ID: 1,
		Meta: domain.JobMeta{
			Protocol: domain.ProtocolHTTP,
			HTTP:     &domain.HTTPMeta{Method: method, URL: url},
			Timeout:  timeoutMS,
		},
	}
}

func TestExecutor_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bar", r.Header.Get("x-foo"))
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	}))
	defer srv.Close()

	job := httpJob(http.MethodGet, srv.URL, 1000)
	job.Headers = map[string]string{"x-foo": "bar"}

	result, err := scheduler.NewExecutor().Execute(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, domain.ResultHTTP, result.Meta.Result)
	assert.Equal(t, http.StatusOK, result.Meta.StatusCode)
	assert.Equal(t, "HTTP/1.1", result.Meta.Version)
	assert.Equal(t, []byte("pong"), result.Body)
	assert.Equal(t, "text/plain", result.Headers["content-type"])
}

func TestExecutor_ClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := scheduler.NewExecutor().Execute(context.Background(), httpJob(http.MethodGet, srv.URL, 1000))
	var ce *domain.ClientError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, http.StatusNotFound, ce.Result.Meta.StatusCode)
	assert.True(t, domain.Retryable(err))
}

func TestExecutor_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := scheduler.NewExecutor().Execute(context.Background(), httpJob(http.MethodPost, srv.URL, 1000))
	var se *domain.ServerError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.Result.Meta.StatusCode)
	// The full response survives into the error so exhausted retries can
	// still persist it.
	assert.Equal(t, []byte("boom\n"), se.Result.Body)
}

func TestExecutor_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := scheduler.NewExecutor().Execute(context.Background(), httpJob(http.MethodGet, srv.URL, 50))
	assert.ErrorIs(t, err, domain.ErrTimeout)
}

func TestExecutor_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // nothing listening any more

	_, err := scheduler.NewExecutor().Execute(context.Background(), httpJob(http.MethodGet, srv.URL, 1000))
	assert.ErrorIs(t, err, domain.ErrHTTPTransport)
}

func TestExecutor_BadJob(t *testing.T) {
	job := &domain.JobRow{ID: 1, Meta: domain.JobMeta{Protocol: domain.ProtocolHTTP, Timeout: 1000}}
	_, err := scheduler.NewExecutor().Execute(context.Background(), job)
	assert.ErrorIs(t, err, domain.ErrHTTPBuild)
	assert.False(t, domain.Retryable(err))
}

func TestExecutor_NoneProtocol(t *testing.T) {
	job := &domain.JobRow{ID: 1, Meta: domain.JobMeta{Protocol: domain.ProtocolNone}}
	result, err := scheduler.NewExecutor().Execute(context.Background(), job)
	require.NoError(t, err)
	assert.Equal(t, domain.ResultNone, result.Meta.Result)
}
