package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	connectOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storeconnect_connect_total",
		Help: "Connect flow outcomes (invalid, login_required, forbidden, consent, authorized, key_generation_failed, error)",
	}, []string{"outcome"})

	disconnectOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storeconnect_disconnect_total",
		Help: "Disconnect teardowns by entry point and outcome",
	}, []string{"source", "outcome"})

	notifyOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storeconnect_disconnect_notify_total",
		Help: "Outbound disconnect notifications to the remote service",
	}, []string{"outcome"})

	beaconOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storeconnect_beacon_total",
		Help: "Tracking beacon sends by event and outcome",
	}, []string{"event", "outcome"})

	dbQueryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storeconnect_db_query_duration_seconds",
		Help:    "SQLite query latency by sqlc query name",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"query", "operation"})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		connectOutcomes,
		disconnectOutcomes,
		notifyOutcomes,
		beaconOutcomes,
		dbQueryDuration,
	)
}

// MetricsHandler exposes the process registry in the Prometheus text format.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// RecordConnect counts one connect flow outcome.
func RecordConnect(outcome string) {
	connectOutcomes.WithLabelValues(outcome).Inc()
}

// RecordDisconnect counts one teardown. source is "local", "webhook" or "uninstall".
func RecordDisconnect(source, outcome string) {
	disconnectOutcomes.WithLabelValues(source, outcome).Inc()
}

// RecordNotify counts one outbound disconnect notification.
func RecordNotify(outcome string) {
	notifyOutcomes.WithLabelValues(outcome).Inc()
}

// RecordBeacon counts one tracking send.
func RecordBeacon(event, outcome string) {
	beaconOutcomes.WithLabelValues(event, outcome).Inc()
}

// ObserveDBQuery records one query latency sample.
func ObserveDBQuery(query, operation string, duration time.Duration) {
	dbQueryDuration.WithLabelValues(query, operation).Observe(duration.Seconds())
}
