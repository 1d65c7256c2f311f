// Package metrics exposes Prometheus instrumentation for searches, remote
// enhancement and catalog reloads.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fandex"

var (
	registerOnce sync.Once

	searchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "searches_total",
		Help:      "Total number of searches by domain and strategy",
	}, []string{"domain", "strategy"})
	searchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_duration_seconds",
		Help:      "Histogram of search latency in seconds by domain and strategy",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms up to ~4s
	}, []string{"domain", "strategy"})
	searchResults = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_results",
		Help:      "Number of results returned per search by domain",
		Buckets:   []float64{0, 1, 5, 10, 20, 50},
	}, []string{"domain"})
	emptySearches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "searches_empty_total",
		Help:      "Total number of non-blank searches that returned no results",
	}, []string{"domain"})

	remoteFallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "remote_fallbacks_total",
		Help:      "Total number of remote-enhanced searches served by the local ranking instead, by reason",
	}, []string{"reason"})
	remoteCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "remote_calls_total",
		Help:      "Total number of remote enhancer calls by enhancer and outcome",
	}, []string{"enhancer", "outcome"})
	remoteDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "remote_call_duration_seconds",
		Help:      "Histogram of remote enhancer latency in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.05, 1.6, 10),
	}, []string{"enhancer"})

	catalogItems = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalog_items",
		Help:      "Current number of items in each domain's catalog snapshot",
	}, []string{"domain"})
	catalogReloads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_reloads_total",
		Help:      "Total number of catalog reloads by domain and outcome",
	}, []string{"domain", "outcome"})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(searchesTotal, searchDuration, searchResults, emptySearches,
			remoteFallbacks, remoteCalls, remoteDuration,
			catalogItems, catalogReloads)
	})
}

// ObserveSearch records one completed search.
func ObserveSearch(domain, strategy string, d time.Duration, results int) {
	searchesTotal.WithLabelValues(domain, strategy).Inc()
	searchDuration.WithLabelValues(domain, strategy).Observe(d.Seconds())
	searchResults.WithLabelValues(domain).Observe(float64(results))
}

func IncEmptySearch(domain string)    { emptySearches.WithLabelValues(domain).Inc() }
func IncRemoteFallback(reason string) { remoteFallbacks.WithLabelValues(reason).Inc() }

// ObserveRemoteCall records the outcome and latency of one enhancer call.
func ObserveRemoteCall(enhancer, outcome string, d time.Duration) {
	remoteCalls.WithLabelValues(enhancer, outcome).Inc()
	remoteDuration.WithLabelValues(enhancer).Observe(d.Seconds())
}

// Catalog gauges
func SetCatalogItems(domain string, n int)    { catalogItems.WithLabelValues(domain).Set(float64(n)) }
func IncCatalogReload(domain, outcome string) { catalogReloads.WithLabelValues(domain, outcome).Inc() }
