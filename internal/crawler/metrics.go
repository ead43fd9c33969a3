package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusVisited = "visited"
	statusFailed  = "failed"
	statusSkipped = "skipped"
)

var crawlSourcesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "s21introspector",
		Name:      "crawl_sources_total",
		Help:      "Script sources handled by the crawler, by outcome",
	},
	[]string{"status"},
)
