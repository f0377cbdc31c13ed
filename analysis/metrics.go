// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package analysis

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects per-analysis timings and outcomes.
type Metrics struct {
	duration  *prometheus.HistogramVec
	rejected  *prometheus.CounterVec
	cacheHits *prometheus.CounterVec
}

// NewMetrics registers analysis collectors with reg. A nil registerer
// creates unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "consensus",
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "Time spent computing an analysis.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"analysis"}),
		rejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consensus",
			Subsystem: "analysis",
			Name:      "rejected_total",
			Help:      "Analyses that did not produce a result, by reason.",
		}, []string{"analysis", "reason"}),
		cacheHits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "consensus",
			Subsystem: "analysis",
			Name:      "cache_hits_total",
			Help:      "Analyses answered from the result cache.",
		}, []string{"analysis"}),
	}
}

func (m *Metrics) observe(kind Kind, d time.Duration) {
	m.duration.WithLabelValues(string(kind)).Observe(d.Seconds())
}

func (m *Metrics) reject(kind Kind, reason string) {
	m.rejected.WithLabelValues(string(kind), reason).Inc()
}

func (m *Metrics) hit(kind Kind) {
	m.cacheHits.WithLabelValues(string(kind)).Inc()
}
