package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// storeCallDuration tracks single store attempts by operation
	storeCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "snpseek_store_call_duration_seconds",
		Help:    "Store call duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	}, []string{"op"})

	storeCallRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snpseek_store_call_retries_total",
		Help: "Total retried store calls by operation",
	}, []string{"op"})

	searchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "snpseek_search_total",
		Help: "Total genotype searches by mode and outcome",
	}, []string{"mode", "result"})

	searchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "snpseek_search_duration_seconds",
		Help:    "Genotype search duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
	}, []string{"mode"})
)
