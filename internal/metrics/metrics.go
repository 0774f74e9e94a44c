// Plexcord - Plex Playback Notifications for Discord
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/plexcord

// Package metrics holds the Prometheus collectors exported on /metrics.
//
// Collectors are registered with the default registry through promauto.
// Callers use the Record* helpers rather than the collectors directly so
// that label values stay consistent.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "plexcord"

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "api_active_requests",
			Help:      "Current number of in-flight HTTP requests",
		},
	)

	// Webhook Metrics
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webhook_events_total",
			Help:      "Webhook events by Plex event kind and classification outcome",
		},
		[]string{"event", "outcome"}, // outcome: "notify", "cache_only", "rejected", "invalid"
	)

	PipelineTasksInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_tasks_in_flight",
			Help:      "Background enrichment and dispatch tasks currently running",
		},
	)

	PipelineTaskErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_task_errors_total",
			Help:      "Background tasks that ended with an error",
		},
		[]string{"task"},
	)

	// Thumbnail Cache Metrics
	ThumbnailOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "thumbnail_operations_total",
			Help:      "Thumbnail cache operations by backend, operation and result",
		},
		[]string{"backend", "operation", "result"}, // result: "hit", "miss", "ok", "error"
	)

	ThumbnailTransformDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "thumbnail_transform_duration_seconds",
			Help:      "Time spent decoding, resizing and encoding thumbnails",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	ThumbnailBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "thumbnail_upload_bytes",
			Help:      "Size of thumbnails received with webhooks",
			Buckets:   prometheus.ExponentialBuckets(4096, 4, 7),
		},
	)

	ThumbnailMaintenanceRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "thumbnail_maintenance_runs_total",
			Help:      "Store housekeeping runs",
		},
		[]string{"backend", "result"},
	)

	// Geolocation Metrics
	GeoLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geo_lookups_total",
			Help:      "Location lookups by source and result",
		},
		[]string{"source", "result"}, // result: "ok", "partial", "error", "skipped", "cached"
	)

	GeoLookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geo_lookup_duration_seconds",
			Help:      "Duration of outbound location lookups",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// Discord Delivery Metrics
	DispatchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discord_dispatch_total",
			Help:      "Discord webhook deliveries by result",
		},
		[]string{"result", "status_code"},
	)

	DispatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "discord_dispatch_duration_seconds",
			Help:      "Discord webhook delivery latency",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_requests_total",
			Help:      "Requests through circuit breakers",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_consecutive_failures",
			Help:      "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state_transitions_total",
			Help:      "Circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Build info, set once at startup.
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build information, value is always 1",
		},
		[]string{"version", "commit"},
	)
)

// RecordAPIRequest records a completed HTTP request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordWebhookEvent counts a received webhook.
func RecordWebhookEvent(event, outcome string) {
	if event == "" {
		event = "unknown"
	}
	WebhookEventsTotal.WithLabelValues(event, outcome).Inc()
}

// TrackTask adjusts the in-flight task gauge.
func TrackTask(inc bool) {
	if inc {
		PipelineTasksInFlight.Inc()
	} else {
		PipelineTasksInFlight.Dec()
	}
}

// RecordTaskError counts a failed background task.
func RecordTaskError(task string) {
	PipelineTaskErrors.WithLabelValues(task).Inc()
}

// RecordThumbnailOp counts a thumbnail store operation.
func RecordThumbnailOp(backend, operation, result string) {
	ThumbnailOperations.WithLabelValues(backend, operation, result).Inc()
}

// RecordThumbnailTransform observes the resize pipeline.
func RecordThumbnailTransform(duration time.Duration, inputBytes int) {
	ThumbnailTransformDuration.Observe(duration.Seconds())
	ThumbnailBytes.Observe(float64(inputBytes))
}

// RecordMaintenance counts a store housekeeping run.
func RecordMaintenance(backend string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ThumbnailMaintenanceRuns.WithLabelValues(backend, result).Inc()
}

// RecordGeoLookup counts a location lookup. Duration is observed only for
// lookups that went to the network.
func RecordGeoLookup(source, result string, duration time.Duration) {
	GeoLookups.WithLabelValues(source, result).Inc()
	if duration > 0 {
		GeoLookupDuration.WithLabelValues(source).Observe(duration.Seconds())
	}
}

// RecordDispatch records a Discord delivery. statusCode is 0 when no
// response was received.
func RecordDispatch(statusCode int, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	code := "none"
	if statusCode > 0 {
		code = strconv.Itoa(statusCode)
	}
	DispatchTotal.WithLabelValues(result, code).Inc()
	DispatchDuration.Observe(duration.Seconds())
}

// SetBuildInfo publishes version labels.
func SetBuildInfo(version, commit string) {
	BuildInfo.WithLabelValues(version, commit).Set(1)
}
