package domain

import (
	"errors"
	"fmt"
)

var (
	ErrTimeout         = errors.New("job timed out")
	ErrRetriesExceeded = errors.New("retries exceeded")
	ErrInvalidURL      = errors.New("invalid url")
	ErrHTTPBuild       = errors.New("http build error")
	ErrHTTPTransport   = errors.New("http transport error")
)

// JobNotFoundError is returned when a job id resolves to no row. The worker
// treats it as a raced completion and drops the entry.
type JobNotFoundError struct {
	ID int64
}

func (e *JobNotFoundError) Error() string {
	return fmt.Sprintf("job not found: %d", e.ID)
}

// InvalidParamsError names the request parameter that failed to parse.
type InvalidParamsError struct {
	Name string
}

func (e *InvalidParamsError) Error() string {
	return fmt.Sprintf("invalid params: %s", e.Name)
}

// ServerError carries the full HTTP result of a 5xx response so that the
// retry path can persist it once retries are exhausted.
type ServerError struct {
	Result JobResult
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error: %d", e.Result.Meta.StatusCode)
}

// ClientError carries the full HTTP result of a 4xx response.
type ClientError struct {
	Result JobResult
}

func (e *ClientError) Error() string {
	return fmt.Sprintf("client error: %d", e.Result.Meta.StatusCode)
}

// Retryable reports whether the outcome should be run through the job's
// retry policy. Timeouts, transport failures and HTTP error statuses are
// retryable; everything else (bad row shape, unbuildable request) is
// terminal.
func Retryable(err error) bool {
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrHTTPTransport) {
		return true
	}
	var se *ServerError
	var ce *ClientError
	return errors.As(err, &se) || errors.As(err, &ce)
}
