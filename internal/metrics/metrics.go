// Package metrics holds the Prometheus collectors of an update run. The run
// is a batch job, so collectors live on a private registry that is written to
// a node-exporter textfile at the end instead of being scraped.
//
// All methods are safe to call on a nil *Metrics (metrics disabled).
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mclang"

// Metrics records run statistics.
type Metrics struct {
	registry *prometheus.Registry

	keysTotal     *prometheus.CounterVec   // locale, verdict
	localesTotal  *prometheus.CounterVec   // phase, status
	downloadBytes prometheus.Counter       //
	phaseDuration *prometheus.GaugeVec     // phase
	ruleHits      *prometheus.CounterVec   // rule
	lastSuccess   prometheus.Gauge         //
	filterSeconds *prometheus.HistogramVec // locale
}

// New creates and registers the collectors on a fresh registry.
func New() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		keysTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keys_total",
			Help:      "Translation keys classified, by locale and verdict",
		}, []string{"locale", "verdict"}), // verdict: kept, dropped

		localesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "locales_total",
			Help:      "Locales processed, by phase and status",
		}, []string{"phase", "status"}), // status: ok, skipped, or an error kind

		downloadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "download_bytes_total",
			Help:      "Bytes downloaded and verified",
		}),

		phaseDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Wall time of the last run of each phase",
		}, []string{"phase"}),

		ruleHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_decisions_total",
			Help:      "Classification decisions, by deciding rule",
		}, []string{"rule"}),

		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that finished without errors",
		}),

		filterSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "filter_duration_seconds",
			Help:      "Time to filter one locale file",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"locale"}),
	}

	for _, c := range []prometheus.Collector{
		m.keysTotal, m.localesTotal, m.downloadBytes, m.phaseDuration,
		m.ruleHits, m.lastSuccess, m.filterSeconds,
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register: %w", err)
		}
	}

	return m, nil
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveFilter records the outcome of filtering one locale.
func (m *Metrics) ObserveFilter(locale string, kept, dropped int, rules map[string]int, d time.Duration) {
	if m == nil {
		return
	}
	m.keysTotal.WithLabelValues(locale, "kept").Add(float64(kept))
	m.keysTotal.WithLabelValues(locale, "dropped").Add(float64(dropped))
	for rule, n := range rules {
		m.ruleHits.WithLabelValues(rule).Add(float64(n))
	}
	m.filterSeconds.WithLabelValues(locale).Observe(d.Seconds())
}

// ObserveLocale counts one locale outcome for a phase.
func (m *Metrics) ObserveLocale(phase, status string) {
	if m == nil {
		return
	}
	m.localesTotal.WithLabelValues(phase, status).Inc()
}

// AddDownloadBytes counts verified download volume.
func (m *Metrics) AddDownloadBytes(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.downloadBytes.Add(float64(n))
}

// ObservePhase records how long a phase took.
func (m *Metrics) ObservePhase(phase string, d time.Duration) {
	if m == nil {
		return
	}
	m.phaseDuration.WithLabelValues(phase).Set(d.Seconds())
}

// MarkSuccess stamps the run as successful at t.
func (m *Metrics) MarkSuccess(t time.Time) {
	if m == nil {
		return
	}
	m.lastSuccess.Set(float64(t.Unix()))
}

// WriteTextfile writes all collectors to path in the text exposition format.
// An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
