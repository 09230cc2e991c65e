// Package services – Prometheus instrumentation for the domain paths.
//
// HTTP-level metrics live in the middleware package; the counters here track
// the two asynchronous flows (bulk sync, webhook reconciliation) that are not
// visible from request metrics alone.
package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_sync_runs_total",
		Help: "Completed bulk sync runs partitioned by outcome (success, failed, cancelled).",
	}, []string{"outcome"})

	syncProductsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_sync_products_total",
		Help: "Products handled by bulk sync partitioned by result (created, updated, failed).",
	}, []string{"result"})

	syncPageFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_sync_page_failures_total",
		Help: "Upstream page fetches that failed and were skipped by the sync engine.",
	})

	webhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_webhook_events_total",
		Help: "Webhook events processed partitioned by outcome (success, failed).",
	}, []string{"outcome"})

	webhookDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "store_webhook_processing_seconds",
		Help:    "End-to-end webhook reconciliation latency in seconds.",
		Buckets: prometheus.DefBuckets,
	})
)
