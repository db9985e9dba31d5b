// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// This package adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang CounterVec and SummaryVec collectors.
//   - Mapping the conversion labels (job, status, entity, kind) onto
//     Prometheus labels.
//   - Pushing collected metrics to a Prometheus Pushgateway instance instead
//     of exposing an HTTP scrape endpoint (a batch run has no lifetime to
//     scrape).
//
// The package intentionally contains all Prometheus-specific dependencies so
// that the rest of the project remains decoupled from Prometheus and can swap
// to alternative backends (e.g. Datadog) without changes to the conversion
// core.
package prompush

import (
	"fmt"

	"github.com/simonwiles/patent-conversion/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	docCounter  *prometheus.CounterVec // "convert_documents_total"
	docDuration *prometheus.SummaryVec // "convert_document_duration_seconds"

	rowCounter   *prometheus.CounterVec // "convert_rows_total"
	tableCounter prometheus.Counter     // "convert_tables_total"
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName is the Pushgateway "job" grouping key; gatewayURL the base URL of
// the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "patent_conversion"
	}

	reg := prometheus.NewRegistry()

	docCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "convert_documents_total",
			Help: "Documents converted, partitioned by status (success/failure).",
		},
		[]string{"status"},
	)
	docDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "convert_document_duration_seconds",
			Help:       "Per-document conversion latency in seconds, partitioned by status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"status"},
	)
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "convert_rows_total",
			Help: "Rows produced per entity table and kind (extracted, written).",
		},
		[]string{"entity", "kind"},
	)
	tableCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "convert_tables_total",
			Help: "Entity tables written out by this run.",
		},
	)

	if err := reg.Register(docCounter); err != nil {
		return nil, fmt.Errorf("prompush: register document counter: %w", err)
	}
	if err := reg.Register(docDuration); err != nil {
		return nil, fmt.Errorf("prompush: register document summary: %w", err)
	}
	if err := reg.Register(rowCounter); err != nil {
		return nil, fmt.Errorf("prompush: register row counter: %w", err)
	}
	if err := reg.Register(tableCounter); err != nil {
		return nil, fmt.Errorf("prompush: register table counter: %w", err)
	}

	return &Backend{
		gatewayURL:   gatewayURL,
		jobName:      jobName,
		reg:          reg,
		docCounter:   docCounter,
		docDuration:  docDuration,
		rowCounter:   rowCounter,
		tableCounter: tableCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "convert_documents_total":
		if b.docCounter == nil {
			return
		}
		b.docCounter.WithLabelValues(labels["status"]).Add(delta)

	case "convert_rows_total":
		if b.rowCounter == nil {
			return
		}
		b.rowCounter.WithLabelValues(labels["entity"], labels["kind"]).Add(delta)

	case "convert_tables_total":
		if b.tableCounter == nil {
			return
		}
		b.tableCounter.Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "convert_document_duration_seconds" || b.docDuration == nil {
		return
	}
	b.docDuration.WithLabelValues(labels["status"]).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
