package loader

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "s21introspector",
		Name:      "loader_requests_total",
		Help:      "HTTP source loads by outcome.",
	}, []string{"status"})

	cacheEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "s21introspector",
		Name:      "loader_cache_events_total",
		Help:      "Source cache hits, misses and stores.",
	}, []string{"event"})
)
