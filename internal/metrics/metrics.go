// Package metrics instruments parsing and propagation with Prometheus
// collectors. The tool has no network surface, so instead of serving
// /metrics the registry is dumped to a textfile that a node-exporter
// textfile collector can pick up.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ephemerisRecordsParsed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pntgo_ephemeris_records_parsed_total",
			Help: "Total number of navigation records parsed.",
		},
	)

	ephemerisRecordsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pntgo_ephemeris_records_skipped_total",
			Help: "Total number of navigation records skipped as malformed.",
		},
	)

	epochsPropagated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pntgo_epochs_propagated_total",
			Help: "Total number of epochs propagated to ECEF states.",
		},
	)

	propagationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pntgo_propagation_duration_seconds",
			Help:    "Wall-clock duration of propagation runs in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
	)

	keplerNonConverged = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pntgo_kepler_nonconverged_total",
			Help: "Epochs whose Kepler solve hit the iteration budget without converging.",
		},
	)
)

func init() {
	prometheus.MustRegister(ephemerisRecordsParsed)
	prometheus.MustRegister(ephemerisRecordsSkipped)
	prometheus.MustRegister(epochsPropagated)
	prometheus.MustRegister(propagationDuration)
	prometheus.MustRegister(keplerNonConverged)
}

// RecordParse records the outcome of one navigation-file parse.
func RecordParse(parsed, skipped int) {
	ephemerisRecordsParsed.Add(float64(parsed))
	ephemerisRecordsSkipped.Add(float64(skipped))
}

// RecordPropagation records one propagation run.
func RecordPropagation(d time.Duration, epochs int) {
	propagationDuration.Observe(d.Seconds())
	epochsPropagated.Add(float64(epochs))
}

// RecordKeplerNonConverged counts an epoch that used its last Kepler iterate
// without meeting the convergence tolerance.
func RecordKeplerNonConverged() {
	keplerNonConverged.Inc()
}

// WriteTextfile dumps the default registry to path in the Prometheus text
// exposition format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}
