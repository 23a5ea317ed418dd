// Package metrics exposes Prometheus collectors for the crawl pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	directoryPagesTotal   *prometheus.CounterVec
	directoryEntriesTotal *prometheus.CounterVec
	parseDefectsTotal     *prometheus.CounterVec
	profilesTotal         *prometheus.CounterVec
	fetchRetriesTotal     prometheus.Counter
	activeWorkers         prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		directoryPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "directory_pages_total",
				Help: "Directory index pages processed, labeled by partition and outcome.",
			},
			[]string{"partition", "outcome"},
		)

		directoryEntriesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "directory_entries_total",
				Help: "Directory listing entries seen, labeled accepted or skipped.",
			},
			[]string{"result"},
		)

		parseDefectsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parse_defects_total",
				Help: "Profile fields that degraded to the sentinel, labeled by field.",
			},
			[]string{"field"},
		)

		profilesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "profiles_total",
				Help: "Profile fetches by terminal status.",
			},
			[]string{"status"},
		)

		fetchRetriesTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "fetch_retries_total",
				Help: "Fetch attempts beyond the first.",
			},
		)

		activeWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "crawl_active_workers",
				Help: "Workers currently processing a page.",
			},
		)
	})
}

// Handler returns the http.Handler exposing the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveDirectoryPage counts one processed index page.
func ObserveDirectoryPage(partition, outcome string) {
	Init()
	directoryPagesTotal.WithLabelValues(partition, outcome).Inc()
}

// ObserveEntry counts one listing entry as accepted or skipped.
func ObserveEntry(result string) {
	Init()
	directoryEntriesTotal.WithLabelValues(result).Inc()
}

// ObserveParseDefect counts a field that degraded to the sentinel.
func ObserveParseDefect(field string) {
	Init()
	parseDefectsTotal.WithLabelValues(field).Inc()
}

// ObserveProfile counts a profile reaching a terminal status.
func ObserveProfile(status string) {
	Init()
	profilesTotal.WithLabelValues(status).Inc()
}

// ObserveRetry counts one fetch retry.
func ObserveRetry() {
	Init()
	fetchRetriesTotal.Inc()
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers() {
	Init()
	activeWorkers.Inc()
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers() {
	Init()
	activeWorkers.Dec()
}
