// Tastevec - Two-Tower Media Taste Retrieval
// Copyright 2026 Tastevec Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tastevec/tastevec

// Package metrics exposes Prometheus instrumentation for the
// recommendation pipelines and the HTTP API.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Training metrics
	TrainDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_train_duration_seconds",
			Help:    "Duration of pipeline training runs in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"pipeline"},
	)

	TrainErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_train_errors_total",
			Help: "Total number of failed training runs",
		},
		[]string{"pipeline"},
	)

	TrainLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommend_train_last_success_timestamp",
			Help: "Unix timestamp of the last successful training run",
		},
		[]string{"pipeline"},
	)

	CatalogSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommend_catalog_entries",
			Help: "Number of catalog entries in the live model table",
		},
		[]string{"pipeline"},
	)

	ModelVersion = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommend_model_version",
			Help: "Version of the live model snapshot",
		},
		[]string{"pipeline"},
	)

	// Recommendation serving metrics
	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommend_query_duration_seconds",
			Help:    "Duration of recommendation queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"pipeline"},
	)

	RecommendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_query_errors_total",
			Help: "Total number of failed recommendation queries",
		},
		[]string{"pipeline", "reason"},
	)

	// Ingestion metrics
	IngestRowsAccepted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_rows_accepted_total",
			Help: "Total number of CSV rows accepted into the interaction store",
		},
		[]string{"dataset"},
	)

	IngestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_errors_total",
			Help: "Total number of rejected uploads",
		},
		[]string{"dataset"},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)
)

// RecordTrain records the outcome of one training run.
func RecordTrain(pipeline string, duration time.Duration, catalogSize, version int, err error) {
	if err != nil {
		TrainErrors.WithLabelValues(pipeline).Inc()
		return
	}
	TrainDuration.WithLabelValues(pipeline).Observe(duration.Seconds())
	TrainLastSuccess.WithLabelValues(pipeline).Set(float64(time.Now().Unix()))
	CatalogSize.WithLabelValues(pipeline).Set(float64(catalogSize))
	ModelVersion.WithLabelValues(pipeline).Set(float64(version))
}

// RecordRecommend records the outcome of one recommendation query.
func RecordRecommend(pipeline string, duration time.Duration, err error) {
	if err != nil {
		RecommendErrors.WithLabelValues(pipeline, errorReason(err)).Inc()
		return
	}
	RecommendDuration.WithLabelValues(pipeline).Observe(duration.Seconds())
}

func errorReason(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if len(msg) > 50 {
		msg = msg[:50]
	}
	return msg
}

// RecordIngest records an upload outcome for a dataset.
func RecordIngest(dataset string, rows int, err error) {
	if err != nil {
		IngestErrors.WithLabelValues(dataset).Inc()
		return
	}
	IngestRowsAccepted.WithLabelValues(dataset).Add(float64(rows))
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
