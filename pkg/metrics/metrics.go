package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	chat2query = "chat2query"

	// Job polling metrics
	jobPollsTotal       = "job_polls_total"
	jobsFinishedTotal   = "jobs_finished_total"
	jobWaitSeconds      = "job_wait_duration_seconds"
	remoteRequestsTotal = "remote_requests_total"

	// Labels
	jobStatusLabel = "status"
	endpointLabel  = "endpoint"
	outcomeLabel   = "outcome"
)

/**
* Metrics definition
**/
var jobPollsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: chat2query,
		Name:      jobPollsTotal,
		Help:      "number of job status polls partitioned by the observed status",
	},
	[]string{jobStatusLabel},
)

var jobsFinishedTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: chat2query,
		Name:      jobsFinishedTotal,
		Help:      "number of awaited jobs that reached a terminal status",
	},
	[]string{jobStatusLabel},
)

var jobWaitSecondsMetric = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Subsystem: chat2query,
		Name:      jobWaitSeconds,
		Help:      "time spent awaiting a job until a terminal status",
		Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
	},
)

var remoteRequestsTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: chat2query,
		Name:      remoteRequestsTotal,
		Help:      "number of requests sent to the remote data service",
	},
	[]string{endpointLabel, outcomeLabel},
)

func IncreaseJobPollsTotalMetric(status string) {
	jobPollsTotalMetric.With(prometheus.Labels{jobStatusLabel: status}).Inc()
}

func ObserveJobFinished(status string, waited time.Duration) {
	jobsFinishedTotalMetric.With(prometheus.Labels{jobStatusLabel: status}).Inc()
	jobWaitSecondsMetric.Observe(waited.Seconds())
}

// IncreaseRemoteRequestsMetric records the outcome of a single call to the
// remote service.
func IncreaseRemoteRequestsMetric(endpoint, outcome string) {
	remoteRequestsTotalMetric.With(prometheus.Labels{
		endpointLabel: endpoint,
		outcomeLabel:  outcome,
	}).Inc()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(jobPollsTotalMetric)
	prometheus.MustRegister(jobsFinishedTotalMetric)
	prometheus.MustRegister(jobWaitSecondsMetric)
	prometheus.MustRegister(remoteRequestsTotalMetric)
	prometheus.MustRegister(totalUniqueCallersPerWeekMetric)
}
