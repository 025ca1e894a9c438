package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Worker metrics

	JobExecutionDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "irisqo",
		Name:      "job_execution_duration_seconds",
		Help:      "Duration of job HTTP execution.",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"outcome"})

	JobsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "irisqo",
		Name:      "worker_jobs_in_flight",
		Help:      "Number of jobs currently being executed by this instance.",
	})

	JobsProcessedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "irisqo",
		Name:      "jobs_processed_total",
		Help:      "Total jobs moved to a terminal state, by status.",
	}, []string{"status"})

	JobsRetriedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "irisqo",
		Name:      "jobs_retried_total",
		Help:      "Total retry decisions, by kind (immediate or delayed).",
	}, []string{"kind"})

	// Scheduler metrics

	ScheduledPromotedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "irisqo",
		Name:      "scheduled_promoted_total",
		Help:      "Total due scheduled rows promoted into the queue.",
	})

	InstancesFencedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "irisqo",
		Name:      "instances_fenced_total",
		Help:      "Total expired peer instances marked dead.",
	})

	SchedulerTickDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "irisqo",
		Name:      "scheduler_tick_duration_seconds",
		Help:      "Time taken for one scheduler tick.",
		Buckets:   prometheus.DefBuckets,
	})

	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "irisqo",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "irisqo",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})
)

func Register() {
	prometheus.MustRegister(
		JobExecutionDuration,
		JobsInFlight,
		JobsProcessedTotal,
		JobsRetriedTotal,
		ScheduledPromotedTotal,
		InstancesFencedTotal,
		SchedulerTickDuration,
		HTTPRequestDuration,
		HTTPRequestsTotal,
	)
}

func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{Addr: addr, Handler: mux}
}
