// Package metrics defines the custom Prometheus metrics for the workflow
// API. It is the single source of truth for metric names, labels, and help
// strings; registration happens at import time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "workflow"

// ── Task metrics ─────────────────────────────────────────────────────────────

// TasksCreatedTotal counts tasks admitted past the balance reservation.
var TasksCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_created_total",
		Help:      "Total number of tasks created.",
	},
)

// TasksCompletedTotal counts tasks that settled successfully.
var TasksCompletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_completed_total",
		Help:      "Total number of tasks completed and settled.",
	},
)

// TaskTransitionsTotal counts generic status transitions.
// Label:
//   - status: the target status applied (e.g. "InQA", "ClientReview")
var TaskTransitionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "task_transitions_total",
		Help:      "Total number of task status transitions, by target status.",
	},
	[]string{"status"},
)

// PartnerRejectionsTotal counts delegation rejections by partners.
var PartnerRejectionsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "partner_rejections_total",
		Help:      "Total number of task delegations rejected by partners.",
	},
)

// ── Ledger metrics ───────────────────────────────────────────────────────────

// HoursBurnedTotal accumulates effective hours consumed at settlement.
var HoursBurnedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "hours_burned_total",
		Help:      "Total effective hours burned from service packages.",
	},
)

// ── Withdrawal metrics ───────────────────────────────────────────────────────

// WithdrawRequestsTotal counts withdrawal requests created by partners.
var WithdrawRequestsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "withdraw_requests_total",
		Help:      "Total number of withdrawal requests created.",
	},
)

// WithdrawResolutionsTotal counts resolutions by the finance desk.
// Label:
//   - decision: "approved" or "rejected"
var WithdrawResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "withdraw_resolutions_total",
		Help:      "Total number of withdrawal requests resolved, by decision.",
	},
	[]string{"decision"},
)
