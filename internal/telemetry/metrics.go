/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

// Package telemetry holds the metrics and tracing plumbing of a run.
package telemetry

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry collects every radiocompose metric. A private registry keeps the
// textfile export free of Go runtime series.
var Registry = prometheus.NewRegistry()

// Sample outcomes recorded by the packer.
const (
	SampleAccepted  = "accepted"
	SampleSkipped   = "skipped"
	SampleDiscarded = "discarded"
)

var (
	// JobsTotal counts finished composition jobs by outcome status.
	JobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radiocompose_jobs_total",
			Help: "Composition jobs by final status.",
		},
		[]string{"status"},
	)

	// SamplesTotal counts candidate samples by packing result.
	SamplesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radiocompose_samples_total",
			Help: "Candidate samples by packing result.",
		},
		[]string{"result"},
	)

	// JobDuration observes wall time per composition job.
	JobDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "radiocompose_job_duration_seconds",
			Help:    "Wall time of one composition job.",
			Buckets: prometheus.ExponentialBuckets(5, 2, 10),
		},
	)

	// StatusRequestsTotal counts status server requests.
	StatusRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "radiocompose_status_requests_total",
			Help: "Status server requests by method, route and code.",
		},
		[]string{"method", "endpoint", "status"},
	)

	// StatusRequestDuration observes status server latency.
	StatusRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "radiocompose_status_request_duration_seconds",
			Help:    "Status server request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	// StatusActiveConnections tracks open status server requests, websockets included.
	StatusActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "radiocompose_status_active_connections",
			Help: "Open status server connections.",
		},
	)
)

func init() {
	Registry.MustRegister(
		JobsTotal,
		SamplesTotal,
		JobDuration,
		StatusRequestsTotal,
		StatusRequestDuration,
		StatusActiveConnections,
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// WriteTextfile dumps the registry to path for the node exporter textfile
// collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
