// Package metrics holds the Prometheus collectors for authentication and ingestion.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Auth rejection reasons used as the "reason" label.
const (
	ReasonMissing       = "missing"
	ReasonMisconfigured = "misconfigured"
	ReasonInvalid       = "invalid"
)

// Scan outcomes used as the "outcome" label.
const (
	OutcomePing     = "ping"
	OutcomeAccepted = "accepted"
	OutcomeFailed   = "failed"
)

// Metrics groups the domain collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	authRejections  *prometheus.CounterVec
	scans           *prometheus.CounterVec
	artifacts       prometheus.Counter
	artifactBytes   prometheus.Counter
	metadataInvalid prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		authRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scan_auth_rejections_total",
				Help: "Requests rejected by the access guard, by reason.",
			},
			[]string{"reason"},
		),
		scans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scan_requests_total",
				Help: "Authorized scan endpoint requests, by outcome.",
			},
			[]string{"outcome"},
		),
		artifacts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scan_artifacts_stored_total",
			Help: "Files persisted to the upload store.",
		}),
		artifactBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scan_artifact_bytes_total",
			Help: "Bytes persisted to the upload store.",
		}),
		metadataInvalid: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scan_metadata_invalid_total",
			Help: "Submissions whose metadata field was not a JSON object.",
		}),
	}

	for _, c := range []prometheus.Collector{m.authRejections, m.scans, m.artifacts, m.artifactBytes, m.metadataInvalid} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) AuthRejected(reason string) {
	if m == nil {
		return
	}
	m.authRejections.WithLabelValues(reason).Inc()
}

func (m *Metrics) ScanOutcome(outcome string) {
	if m == nil {
		return
	}
	m.scans.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ArtifactStored(size int64) {
	if m == nil {
		return
	}
	m.artifacts.Inc()
	if size > 0 {
		m.artifactBytes.Add(float64(size))
	}
}

func (m *Metrics) MetadataInvalid() {
	if m == nil {
		return
	}
	m.metadataInvalid.Inc()
}
