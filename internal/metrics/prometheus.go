package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the reconciliation pipeline

var (
	// Feed metrics
	FeedFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlb_feed_fetches_total",
			Help: "Total number of feed fetches",
		},
		[]string{"source", "status"},
	)

	FeedFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mlb_feed_fetch_duration_seconds",
			Help:    "Duration of feed fetches in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	FeedRecordsFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlb_feed_records_fetched_total",
			Help: "Total number of game records returned by feeds",
		},
		[]string{"source"},
	)

	// Merge metrics
	RecordsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlb_records_dropped_total",
			Help: "Total number of records dropped during reconciliation",
		},
		[]string{"reason"},
	)

	GamesMergedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mlb_games_merged_total",
			Help: "Total number of games merged and labeled",
		},
	)

	// Ledger metrics
	PicksLoggedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlb_picks_logged_total",
			Help: "Total number of picks written to the best-bets ledger",
		},
		[]string{"bet_type"},
	)

	PicksScoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlb_picks_scored_total",
			Help: "Total number of pick results settled",
		},
		[]string{"result"},
	)

	// Pipeline metrics
	PipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlb_pipeline_runs_total",
			Help: "Total number of pipeline date runs",
		},
		[]string{"status"},
	)

	PipelineRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mlb_pipeline_run_duration_seconds",
			Help:    "Duration of pipeline date runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	LastSuccessfulRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mlb_last_successful_run_timestamp",
			Help: "Timestamp of the last successful pipeline run",
		},
	)

	// Cache metrics
	CacheHitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mlb_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMissesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mlb_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mlb_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)
)

// RecordFeedFetch records one feed fetch attempt.
func RecordFeedFetch(source, status string, records int, duration float64) {
	FeedFetchesTotal.WithLabelValues(source, status).Inc()
	FeedFetchDuration.WithLabelValues(source).Observe(duration)
	if records > 0 {
		FeedRecordsFetched.WithLabelValues(source).Add(float64(records))
	}
}

// RecordDrop records a record skipped during reconciliation.
func RecordDrop(reason string) {
	RecordsDroppedTotal.WithLabelValues(reason).Inc()
}

// RecordMerged records merged game count for a run.
func RecordMerged(count int) {
	GamesMergedTotal.Add(float64(count))
}

// RecordPicksLogged records picks appended to the ledger.
func RecordPicksLogged(betType string, count int) {
	PicksLoggedTotal.WithLabelValues(betType).Add(float64(count))
}

// RecordPickScored records one settled pick result.
func RecordPickScored(result string) {
	PicksScoredTotal.WithLabelValues(result).Inc()
}

// RecordPipelineRun records one date run.
func RecordPipelineRun(status string, duration float64) {
	PipelineRunsTotal.WithLabelValues(status).Inc()
	PipelineRunDuration.Observe(duration)

	if status == "success" {
		LastSuccessfulRun.SetToCurrentTime()
	}
}

// RecordCacheHit records a cache hit
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
