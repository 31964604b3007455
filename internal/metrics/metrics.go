// Package metrics exposes Prometheus collectors for analysis runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"CryptoPulse/internal/model"
)

// Metrics holds all collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	RunsTotal     *prometheus.CounterVec // labels: ticker, status
	RunDuration   prometheus.Histogram
	SignalsTotal  *prometheus.CounterVec // labels: ticker, signal
	Downgrades    *prometheus.CounterVec // labels: ticker
	FetchDuration *prometheus.HistogramVec
	FetchErrors   *prometheus.CounterVec // labels: provider
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
	AlertsSent    *prometheus.CounterVec // labels: ticker
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pulse_runs_total",
			Help: "Analysis runs by outcome",
		}, []string{"ticker", "status"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pulse_run_duration_seconds",
			Help:    "Wall time of one analysis run including fetch",
			Buckets: prometheus.DefBuckets,
		}),
		SignalsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pulse_signals_total",
			Help: "Evaluated rows by emitted signal",
		}, []string{"ticker", "signal"}),
		Downgrades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pulse_rule_downgrades_total",
			Help: "Evaluable rows forced to Hold by an invalid indicator",
		}, []string{"ticker"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pulse_fetch_duration_seconds",
			Help:    "Market data provider latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"provider"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pulse_fetch_errors_total",
			Help: "Failed provider requests",
		}, []string{"provider"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pulse_cache_hits_total",
			Help: "Price series served from cache",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pulse_cache_misses_total",
			Help: "Price series fetched from a provider",
		}),
		AlertsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pulse_alerts_sent_total",
			Help: "Alerts delivered to the notifier",
		}, []string{"ticker"}),
	}
	m.Registry.MustRegister(
		m.RunsTotal, m.RunDuration, m.SignalsTotal, m.Downgrades,
		m.FetchDuration, m.FetchErrors, m.CacheHits, m.CacheMisses, m.AlertsSent,
	)
	return m
}

// ObserveRun records the outcome of one run.
func (m *Metrics) ObserveRun(ticker string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.RunsTotal.WithLabelValues(ticker, status).Inc()
	m.RunDuration.Observe(d.Seconds())
}

// ObserveReport counts signals and downgrades of a finished run.
func (m *Metrics) ObserveReport(r *model.Report) {
	if m == nil || r == nil {
		return
	}
	for _, row := range r.Table {
		if row.Evaluable {
			m.SignalsTotal.WithLabelValues(r.Config.Ticker, string(row.Signal)).Inc()
		}
	}
	m.Downgrades.WithLabelValues(r.Config.Ticker).Add(float64(r.Downgrades))
}

// ObserveFetch records provider latency and failures.
func (m *Metrics) ObserveFetch(provider string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.FetchDuration.WithLabelValues(provider).Observe(d.Seconds())
	if err != nil {
		m.FetchErrors.WithLabelValues(provider).Inc()
	}
}

// ObserveCache records a cache lookup.
func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHits.Inc()
	} else {
		m.CacheMisses.Inc()
	}
}

// ObserveAlerts counts delivered alerts.
func (m *Metrics) ObserveAlerts(ticker string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.AlertsSent.WithLabelValues(ticker).Add(float64(n))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Serve starts the /metrics endpoint in the background.
func (m *Metrics) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.WithField("addr", addr).Info("metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("metrics server stopped")
		}
	}()
	return srv
}
