package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	queriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exoplanet_queries_total",
			Help: "Total number of store queries by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)
	queryDurationMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "exoplanet_query_duration_ms",
			Help:    "Store query latency in milliseconds.",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 5000},
		},
		[]string{"kind"},
	)
	queryRowsReturned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "exoplanet_query_rows_returned",
			Help:    "Number of rows returned per successful query.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"kind"},
	)
	ingestRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exoplanet_ingest_runs_total",
			Help: "Total number of ingestion runs by outcome.",
		},
		[]string{"outcome"},
	)
	ingestRowsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "exoplanet_ingest_rows_total",
			Help: "Total number of rows written by ingestion.",
		},
	)
	ingestDurationMs = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "exoplanet_ingest_duration_ms",
			Help:    "Ingestion run duration in milliseconds.",
			Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		},
	)
	tableRows = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "exoplanet_table_rows",
			Help: "Row count of the exoplanets table after the latest ingestion.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		queriesTotal,
		queryDurationMs,
		queryRowsReturned,
		ingestRunsTotal,
		ingestRowsTotal,
		ingestDurationMs,
		tableRows,
	)
}

func ObserveQuery(kind, outcome string, rows int, elapsed time.Duration) {
	queriesTotal.WithLabelValues(kind, outcome).Inc()
	queryDurationMs.WithLabelValues(kind).Observe(float64(elapsed.Milliseconds()))
	if outcome == "ok" {
		queryRowsReturned.WithLabelValues(kind).Observe(float64(rows))
	}
}

func ObserveIngest(outcome string, rows int64, elapsed time.Duration) {
	ingestRunsTotal.WithLabelValues(outcome).Inc()
	ingestDurationMs.Observe(float64(elapsed.Milliseconds()))
	if outcome != "ok" {
		return
	}
	if rows > 0 {
		ingestRowsTotal.Add(float64(rows))
	}
	tableRows.Set(float64(rows))
}
