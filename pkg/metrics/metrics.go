package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"neo-overwatch/pkg/neodb"
)

var (
	QueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neo_queries_total",
		Help: "Close approach queries served, by entry point.",
	}, []string{"source"})

	QueryResults = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "neo_query_results",
		Help:    "Number of close approaches returned per query.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	LookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neo_lookups_total",
		Help: "NEO lookups, by key and result.",
	}, []string{"key", "result"})

	EventsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "neo_events_consumed_total",
		Help: "Events consumed from the event stream, by type.",
	}, []string{"type"})

	DatabaseRecords = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "neo_database_records",
		Help: "Records held by the loaded database, by kind.",
	}, []string{"kind"})
)

// ObserveLookup counts a lookup by designation or name.
func ObserveLookup(key string, found bool) {
	result := "miss"
	if found {
		result = "hit"
	}
	LookupsTotal.WithLabelValues(key, result).Inc()
}

// ObserveQuery counts a query and its result size.
func ObserveQuery(source string, results int) {
	QueriesTotal.WithLabelValues(source).Inc()
	QueryResults.Observe(float64(results))
}

// RecordDatabase publishes the record counts of a freshly built database.
func RecordDatabase(stats neodb.Stats) {
	DatabaseRecords.WithLabelValues("neos").Set(float64(stats.NEOs))
	DatabaseRecords.WithLabelValues("approaches").Set(float64(stats.Approaches))
	DatabaseRecords.WithLabelValues("orphans").Set(float64(stats.Orphans))
}
