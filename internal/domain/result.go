package domain

import "errors"

// ProcessedStatus is the terminal status stored in the processed table.
type ProcessedStatus string

const (
	StatusCompleted ProcessedStatus = "completed"
	StatusFailed    ProcessedStatus = "failed"
	StatusCancelled ProcessedStatus = "cancelled"
)

// HistoryStatus is the journal status written on every queue transition.
type HistoryStatus string

const (
	HistoryEnqueued  HistoryStatus = "enqueued"
	HistoryScheduled HistoryStatus = "scheduled"
	HistoryAssigned  HistoryStatus = "assigned"
	HistoryRetried   HistoryStatus = "retried"
	HistoryCompleted HistoryStatus = "completed"
	HistoryFailed    HistoryStatus = "failed"
	HistoryCancelled HistoryStatus = "cancelled"
)

// JobResultKind tags the outcome variant of a processed job.
type JobResultKind string

const (
	ResultNone      JobResultKind = "none"
	ResultCancelled JobResultKind = "cancelled"
	ResultTimeout   JobResultKind = "timeout"
	ResultError     JobResultKind = "error"
	ResultHTTP      JobResultKind = "http"
)

// JobResultMeta is the JSON blob stored in processed.meta. The variant tag
// and its payload fields are flattened into one object, e.g.
// {"result":"http","status_code":200,"version":"HTTP/1.1"}.
type JobResultMeta struct {
	Result     JobResultKind `json:"result"`
	Error      string        `json:"error,omitempty"`
	StatusCode int           `json:"status_code,omitempty"`
	Version    string        `json:"version,omitempty"`
}

// JobResult is the typed outcome of a job run: the variant meta plus the
// collected response headers and body.
type JobResult struct {
	Meta    JobResultMeta     `json:"meta"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    []byte            `json:"body,omitempty"`
}

func NoneResult() JobResult {
	return JobResult{Meta: JobResultMeta{Result: ResultNone}}
}

func HTTPResult(statusCode int, version string, headers map[string]string, body []byte) JobResult {
	return JobResult{
		Meta: JobResultMeta{
			Result:     ResultHTTP,
			StatusCode: statusCode,
			Version:    version,
		},
		Headers: headers,
		Body:    body,
	}
}

// ResultFromError converts a run error into the result to persist. Client
// and server errors already carry the full HTTP result; a timeout becomes
// the timeout variant; everything else keeps its message.
func ResultFromError(err error) JobResult {
	var se *ServerError
	if errors.As(err, &se) {
		return se.Result
	}
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Result
	}
	if errors.Is(err, ErrTimeout) {
		return JobResult{Meta: JobResultMeta{Result: ResultTimeout}}
	}
	return JobResult{Meta: JobResultMeta{Result: ResultError, Error: err.Error()}}
}

// Status derives the terminal processed status from the result variant.
// HTTP 4xx and 5xx count as failed.
func (m JobResultMeta) Status() ProcessedStatus {
	switch m.Result {
	case ResultTimeout, ResultError:
		return StatusFailed
	case ResultCancelled:
		return StatusCancelled
	case ResultHTTP:
		if m.StatusCode >= 400 {
			return StatusFailed
		}
		return StatusCompleted
	default:
		return StatusCompleted
	}
}
