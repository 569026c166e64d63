// Package metrics defines the Prometheus instrumentation exposed on the
// gateway's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SubmissionsAccepted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "turbo_gateway_submissions_accepted_total",
		Help: "Submissions accepted by intake, before dispatch to a worker.",
	}, []string{"app_account_id"})

	SubmissionsFinalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "turbo_gateway_submissions_finalized_total",
		Help: "Submissions successfully included on chain and written back.",
	}, []string{"app_account_id"})

	SubmissionsErrored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "turbo_gateway_submissions_errored_total",
		Help: "Submissions that ended in an error state, by error kind.",
	}, []string{"kind"})

	AdmissionRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "turbo_gateway_admission_rejections_total",
		Help: "Submissions rejected by the credit gate, by rejection kind.",
	}, []string{"kind"})

	ChainSubmitDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "turbo_gateway_chain_submit_duration_seconds",
		Help:    "Time spent inside a single chain submit call, success or failure.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"outcome"})

	WorkerHeartbeatAge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "turbo_gateway_worker_heartbeat_age_seconds",
		Help: "Seconds since each worker's last heartbeat, as observed by the supervisor.",
	}, []string{"worker_index"})

	WorkerRespawns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "turbo_gateway_worker_respawns_total",
		Help: "Times the supervisor has respawned a worker for going silent.",
	}, []string{"worker_index"})

	ReconcilerRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "turbo_gateway_reconciler_retries_total",
		Help: "Retry attempts made by the reconciler, by outcome.",
	}, []string{"outcome"})
)
