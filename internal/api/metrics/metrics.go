// Package metrics defines the custom Prometheus metrics of the membership
// service. Metrics register with the default registry on import through
// promauto and are served by the router at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "membership"

// ── Webhook metrics ───────────────────────────────────────────────────────────

// WebhooksTotal counts processed Square webhooks.
// Labels:
//   - type: the Square event type (e.g. "payment.updated")
//   - outcome: the synchronizer outcome, or "error" / "duplicate"
var WebhooksTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "webhooks_total",
		Help:      "Total number of Square webhooks handled, by event type and outcome.",
	},
	[]string{"type", "outcome"},
)

// PaymentsClassifiedTotal counts payment classifications.
// Label:
//   - kind: the payment kind (e.g. "sponsorship_renewal")
var PaymentsClassifiedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "payments_classified_total",
		Help:      "Total number of payment.updated events by classified kind.",
	},
	[]string{"kind"},
)

// SubscriptionPauseFailuresTotal counts sponsorship grants whose own
// subscription pause failed and was queued for reconciliation.
var SubscriptionPauseFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "subscription_pause_failures_total",
		Help:      "Total number of subscription pauses that failed during webhook handling.",
	},
)

// WebhookProcessingDuration measures synchronizer handling time per event type.
var WebhookProcessingDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "webhook_processing_duration_seconds",
		Help:      "Duration of webhook handling from receipt to response.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"type"},
)

// ── Role sync metrics ─────────────────────────────────────────────────────────

// RoleSyncQueueDepth tracks pending role-sync jobs per dispatcher worker.
var RoleSyncQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "role_sync_queue_depth",
		Help:      "Current number of role-sync jobs pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)

// RoleSyncTotal counts dispatched role syncs by result ("ok" or "error").
var RoleSyncTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_sync_total",
		Help:      "Total number of dispatched role syncs, by result.",
	},
	[]string{"result"},
)

// ── Reconciliation metrics ────────────────────────────────────────────────────

// ReconcileJobsTotal counts reconciliation job results.
// Label:
//   - result: "succeeded", "skipped", "requeued", "dropped" or "lost"
var ReconcileJobsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconcile_jobs_total",
		Help:      "Total number of replayed external calls, by result.",
	},
	[]string{"result"},
)

// ReconcileQueueLength is the reconcile queue length seen after the last drain.
var ReconcileQueueLength = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "reconcile_queue_length",
		Help:      "Number of external calls waiting for reconciliation.",
	},
)
