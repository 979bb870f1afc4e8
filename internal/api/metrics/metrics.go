// Package metrics defines and registers all custom Prometheus metrics for the
// persona account service. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry via promauto at
// package init; the HTTP layer exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "persona"

// ── Event bus metrics ─────────────────────────────────────────────────────────

// BusEventsPublishedTotal counts events published on the domain event bus.
// Label:
//   - kind: the event variant (e.g. "user_signed_in")
var BusEventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bus_events_published_total",
		Help:      "Total number of domain events published on the event bus.",
	},
	[]string{"kind"},
)

// BusEventsDroppedTotal counts events discarded by the drop-oldest overflow
// policy. A non-zero rate means some subscriber is not keeping up.
// Label:
//   - kind: the variant of the dropped event
var BusEventsDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bus_events_dropped_total",
		Help:      "Total number of domain events dropped from subscriber buffers (drop-oldest overflow).",
	},
	[]string{"kind"},
)

// BusSubscribers tracks the current number of live bus subscriptions.
var BusSubscribers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "bus_subscribers",
		Help:      "Current number of live event bus subscriptions.",
	},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionTransitionsTotal counts derived session state transitions.
// Label:
//   - phase: the new session phase ("authenticated", "not_authenticated", ...)
var SessionTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_transitions_total",
		Help:      "Total number of session state transitions, by resulting phase.",
	},
	[]string{"phase"},
)

// SessionRefreshFailuresTotal counts failed session reloads from storage
// (read errors and corrupt blobs), each of which collapses the session to
// not-authenticated.
var SessionRefreshFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_refresh_failures_total",
		Help:      "Total number of session storage reloads that failed and reset the session.",
	},
)

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts sign-in attempts.
// Label:
//   - result: "success", "invalid_credentials", or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of sign-in attempts, by result.",
	},
	[]string{"result"},
)
