package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/irisqo/irisqo/internal/domain"
	"github.com/irisqo/irisqo/internal/repository"
	"github.com/irisqo/irisqo/internal/requestid"
)

// IngestHandler turns an incoming request on /to/<url> into a stored job.
// The method, headers and body are captured verbatim for later replay;
// underscore-prefixed query directives configure when and how the job runs
// and are stripped from the upstream URL.
type IngestHandler struct {
	instanceID     string
	queue          repository.QueueRepository
	defaultTimeout uint32 // milliseconds
	logger         *slog.Logger
}

func NewIngestHandler(instanceID string, queue repository.QueueRepository, defaultTimeout uint32, logger *slog.Logger) *IngestHandler {
	return &IngestHandler{
		instanceID:     instanceID,
		queue:          queue,
		defaultTimeout: defaultTimeout,
		logger:         logger.With("component", "ingest_handler"),
	}
}

func (h *IngestHandler) Handle(c *gin.Context) {
	create, err := h.buildCreate(c)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	created, err := h.queue.Create(c.Request.Context(), *create, h.instanceID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("location", fmt.Sprintf("/api/v1/jobs/%d", created.ID))
	c.Header("job-id", strconv.FormatInt(created.ID, 10))
	if created.ScheduleID != nil {
		c.Header("schedule-id", *created.ScheduleID)
	}
	if created.ExternalID != nil {
		c.Header("external-id", *created.ExternalID)
	}
	c.Status(http.StatusCreated)
}

func (h *IngestHandler) buildCreate(c *gin.Context) (*domain.JobCreate, error) {
	upstream, directives, err := splitUpstreamURL(c.Param("url"), c.Request.URL.Query())
	if err != nil {
		return nil, err
	}

	meta := domain.JobMeta{
		Protocol: domain.ProtocolHTTP,
		HTTP:     &domain.HTTPMeta{Method: c.Request.Method, URL: upstream},
		Timeout:  h.defaultTimeout,
		TraceID:  requestid.FromContext(c.Request.Context()),
	}

	if v, ok := directives["_timeout"]; ok {
		timeout, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, &domain.InvalidParamsError{Name: "timeout"}
		}
		meta.Timeout = uint32(timeout)
	}

	if v, ok := directives["_retry"]; ok {
		retry, err := domain.ParseRetry(v)
		if err != nil {
			return nil, err
		}
		meta.Retry = retry
	}

	create := domain.JobCreate{
		Meta:    meta,
		Headers: captureHeaders(c.Request.Header),
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	create.Body = body

	now := domain.NowSecs()

	if v, ok := directives["_delay"]; ok {
		delay, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, &domain.InvalidParamsError{Name: "delay"}
		}
		at := now + int64(delay)
		create.At = &at
		d := uint32(delay)
		create.Meta.Delay = &d
	}

	if v, ok := directives["_delay_until"]; ok {
		at, err := strconv.ParseInt(v, 10, 64)
		if err != nil || at <= now {
			return nil, &domain.InvalidParamsError{Name: "delay_until"}
		}
		create.At = &at
	}

	if v, ok := directives["_until"]; ok {
		until, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, &domain.InvalidParamsError{Name: "until"}
		}
		create.Until = &until
	}

	interval, hasInterval := directives["_interval"]
	cronExpr, hasCron := directives["_cron"]
	if hasInterval && hasCron {
		return nil, &domain.InvalidParamsError{Name: "schedule"}
	}
	if hasInterval || hasCron {
		spec := interval
		if hasCron {
			spec = cronExpr
		}
		sched, err := domain.ParseSchedule(spec)
		if err != nil {
			return nil, err
		}
		create.Schedule = &sched
	}

	if v, ok := directives["_id"]; ok {
		if v == "" || len(v) > 64 {
			return nil, &domain.InvalidParamsError{Name: "id"}
		}
		create.ExternalID = &v
	}

	return &create, nil
}

// splitUpstreamURL validates the wildcard path as an absolute http(s) URL
// and partitions the query string: underscore directives are consumed here,
// everything else is re-appended to the upstream URL.
func splitUpstreamURL(raw string, query url.Values) (string, map[string]string, error) {
	raw = strings.TrimPrefix(raw, "/")

	target, err := url.Parse(raw)
	if err != nil || !target.IsAbs() || target.Host == "" {
		return "", nil, domain.ErrInvalidURL
	}
	if target.Scheme != "http" && target.Scheme != "https" {
		return "", nil, domain.ErrInvalidURL
	}

	directives := make(map[string]string)
	passthrough := target.Query()
	for name, values := range query {
		if strings.HasPrefix(name, "_") {
			directives[name] = values[0]
			continue
		}
		for _, v := range values {
			passthrough.Add(name, v)
		}
	}
	target.RawQuery = passthrough.Encode()

	return target.String(), directives, nil
}

// captureHeaders flattens the request headers for storage. Hop-by-hop
// headers and the ones the replay client sets itself are skipped.
func captureHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for name, values := range h {
		switch strings.ToLower(name) {
		case "host", "connection", "content-length", "accept-encoding":
			continue
		}
		out[strings.ToLower(name)] = strings.Join(values, ",")
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
