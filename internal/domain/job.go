package domain

// JobProtocol tags the transport a job replays over. Only http is executed;
// none completes immediately with an empty result.
type JobProtocol string

const (
	ProtocolNone JobProtocol = "none"
	ProtocolHTTP JobProtocol = "http"
)

// HTTPMeta is the protocol payload for http jobs: the method and absolute
// URL the stored request is replayed against.
type HTTPMeta struct {
	Method string `json:"method"`
	URL    string `json:"url"`
}

// JobMeta is the JSON blob stored in jobs.meta: the protocol payload plus
// the retry policy, the optional delay hint and the per-job timeout.
type JobMeta struct {
	Protocol JobProtocol `json:"protocol"`
	HTTP     *HTTPMeta   `json:"http,omitempty"`
	Retry    JobRetry    `json:"retry"`
	Delay    *uint32     `json:"delay,omitempty"`
	Timeout  uint32      `json:"timeout"` // milliseconds
	TraceID  string      `json:"trace_id,omitempty"`
}

// JobRow is the immutable request template stored in the jobs table.
type JobRow struct {
	ID         int64             `json:"id"`
	Meta       JobMeta           `json:"meta"`
	Headers    map[string]string `json:"headers,omitempty"`
	Body       []byte            `json:"body,omitempty"`
	ScheduleID *string           `json:"schedule_id,omitempty"`
	ExternalID *string           `json:"external_id,omitempty"`
}

// JobCreate is the input to the create transition. At and Schedule decide
// which of the three shapes runs: immediate enqueue, one-shot scheduled, or
// recurring with a schedules row.
type JobCreate struct {
	Meta       JobMeta
	Headers    map[string]string
	Body       []byte
	At         *int64 // epoch seconds
	Schedule   *JobSchedule
	Until      *int64
	ExternalID *string
}

// JobCreated is what create returns, also on the idempotent path.
type JobCreated struct {
	ID         int64
	ScheduleID *string
	ExternalID *string
}

// JobEntry is a leased unit of work: the job id and the retry level the
// lease was taken at.
type JobEntry struct {
	ID    int64
	Retry int32
}
