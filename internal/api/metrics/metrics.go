// Package metrics defines and registers all custom Prometheus metrics for
// the gallery API. It is the single source of truth for metric names, labels,
// and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gallery"

// LoginsTotal counts authentication attempts.
// Labels:
//   - mode: "admin", "code", or "signup"
//   - result: "ok", "invalid", "banned"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of authentication attempts, by mode and result.",
	},
	[]string{"mode", "result"},
)

// DownloadsTotal counts source-link reveal attempts.
// Label:
//   - outcome: "ok", "login_required", "insufficient_points", "in_flight", "error"
var DownloadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "downloads_total",
		Help:      "Total number of download attempts, by outcome.",
	},
	[]string{"outcome"},
)

// UploadsTotal counts design submissions that entered the review queue.
// Label:
//   - tag: the stored design tag
var UploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Total number of designs submitted for review, by tag.",
	},
	[]string{"tag"},
)

// ModerationDecisionsTotal counts admin review outcomes.
// Label:
//   - action: "approve_design", "reject_design", "approve_delete_request", "reject_delete_request"
var ModerationDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "moderation_decisions_total",
		Help:      "Total number of moderation decisions, by action.",
	},
	[]string{"action"},
)

// CatalogVisibleItems tracks the number of published designs in the current
// catalog snapshot.
var CatalogVisibleItems = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalog_visible_items",
		Help:      "Number of published designs in the current catalog snapshot.",
	},
)

// FeedClients tracks the number of connected catalog feed subscribers.
var FeedClients = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "feed_clients",
		Help:      "Number of websocket clients subscribed to the catalog feed.",
	},
)
