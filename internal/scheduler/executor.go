package scheduler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/irisqo/irisqo/internal/domain"
)

// Executor replays the stored HTTP request of a job against its target.
// The client carries no global timeout; each run gets a per-job deadline.
type Executor struct {
	client *http.Client
}

func NewExecutor() *Executor {
	return &Executor{client: &http.Client{}}
}

// Execute runs the job once and returns the collected result. Errors are
// classified for the retry ladder: context deadline becomes
// domain.ErrTimeout, transport failures wrap domain.ErrHTTPTransport, and
// HTTP error statuses become ServerError/ClientError carrying the full
// response so exhausted retries still persist it.
func (e *Executor) Execute(ctx context.Context, job *domain.JobRow) (domain.JobResult, error) {
	if job.Meta.Protocol != domain.ProtocolHTTP {
		return domain.NoneResult(), nil
	}
	if job.Meta.HTTP == nil {
		return domain.JobResult{}, fmt.Errorf("%w: missing http meta", domain.ErrHTTPBuild)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(job.Meta.Timeout)*time.Millisecond)
	defer cancel()

	var bodyReader io.Reader
	if len(job.Body) > 0 {
		bodyReader = bytes.NewReader(job.Body)
	}

	req, err := http.NewRequestWithContext(ctx, job.Meta.HTTP.Method, job.Meta.HTTP.URL, bodyReader)
	if err != nil {
		return domain.JobResult{}, fmt.Errorf("%w: %s", domain.ErrHTTPBuild, err)
	}
	for k, v := range job.Headers {
		req.Header.Set(k, v)
	}
	if job.Meta.TraceID != "" {
		req.Header.Set("x-trace-id", job.Meta.TraceID)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.JobResult{}, domain.ErrTimeout
		}
		return domain.JobResult{}, fmt.Errorf("%w: %s", domain.ErrHTTPTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return domain.JobResult{}, domain.ErrTimeout
		}
		return domain.JobResult{}, fmt.Errorf("%w: read body: %s", domain.ErrHTTPTransport, err)
	}

	result := domain.HTTPResult(resp.StatusCode, resp.Proto, flattenHeaders(resp.Header), body)
	switch {
	case resp.StatusCode >= 500:
		return domain.JobResult{}, &domain.ServerError{Result: result}
	case resp.StatusCode >= 400:
		return domain.JobResult{}, &domain.ClientError{Result: result}
	}
	return result, nil
}

func flattenHeaders(h http.Header) map[string]string {
	if len(h) == 0 {
		return nil
	}
	out := make(map[string]string, len(h))
	for k, vs := range h {
		out[strings.ToLower(k)] = strings.Join(vs, ",")
	}
	return out
}
