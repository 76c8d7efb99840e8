package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LookupRequests counts shareholder lookups by outcome
	// (account_match|chn_match|name_matches|not_found|error).
	LookupRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agmreg_lookup_requests_total",
			Help: "Total number of shareholder lookup requests",
		},
		[]string{"status"},
	)

	// RegistrationEvents counts registration workflow transitions by stage
	// (issued|confirmed) and result (success|rejected|error).
	RegistrationEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agmreg_registration_events_total",
			Help: "Total number of registration workflow events",
		},
		[]string{"stage", "result"},
	)

	// OutboxEmails counts outbox dispatch attempts by kind and result (sent|retry|failed).
	OutboxEmails = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agmreg_outbox_emails_total",
			Help: "Total number of outbox email dispatch attempts",
		},
		[]string{"kind", "result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "agmreg_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
