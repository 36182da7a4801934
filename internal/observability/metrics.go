package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus gauges and counters describing one ETL run.
// A run is a one-shot process, so values are exported through a textfile
// rather than a scrape endpoint.
type Metrics struct {
	Registry *prometheus.Registry

	RowsRead          *prometheus.GaugeVec // labels: source={climate,stations}
	RecordsReshaped   prometheus.Gauge
	UnmatchedStations prometheus.Gauge
	DuplicateStations prometheus.Gauge
	RowsStored        prometheus.Gauge
	RowsCorrected     prometheus.Gauge
	MapsWritten       prometheus.Gauge

	StageDuration *prometheus.GaugeVec   // labels: stage
	ExportErrors  *prometheus.CounterVec // labels: exporter

	RunSuccess   prometheus.Gauge
	RunTimestamp prometheus.Gauge
}

// NewMetrics creates the run metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RowsRead: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "climate_etl",
			Name:      "rows_read",
			Help:      "Rows read from each input file.",
		}, []string{"source"}),
		RecordsReshaped: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climate_etl",
			Name:      "records_reshaped",
			Help:      "Long-format records produced from the wide normals table.",
		}),
		UnmatchedStations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climate_etl",
			Name:      "unmatched_stations",
			Help:      "Distinct climate stations without a catalogue entry after the join.",
		}),
		DuplicateStations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climate_etl",
			Name:      "duplicate_stations",
			Help:      "Catalogue entries ignored because the name was already present.",
		}),
		RowsStored: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climate_etl",
			Name:      "rows_stored",
			Help:      "Rows written to the climate table.",
		}),
		RowsCorrected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climate_etl",
			Name:      "rows_corrected",
			Help:      "Stored rows whose coordinates were overwritten by a correction.",
		}),
		MapsWritten: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climate_etl",
			Name:      "maps_written",
			Help:      "Standalone map files written.",
		}),
		StageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "climate_etl",
			Name:      "stage_duration_seconds",
			Help:      "Wall time spent in each pipeline stage.",
		}, []string{"stage"}),
		ExportErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "climate_etl",
			Name:      "export_errors_total",
			Help:      "Failed optional exports by exporter.",
		}, []string{"exporter"}),
		RunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climate_etl",
			Name:      "last_run_success",
			Help:      "1 when the last run completed, 0 otherwise.",
		}),
		RunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "climate_etl",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time at which the last run finished.",
		}),
	}

	m.Registry.MustRegister(
		m.RowsRead,
		m.RecordsReshaped,
		m.UnmatchedStations,
		m.DuplicateStations,
		m.RowsStored,
		m.RowsCorrected,
		m.MapsWritten,
		m.StageDuration,
		m.ExportErrors,
		m.RunSuccess,
		m.RunTimestamp,
	)

	return m
}

// NewMetricsForTesting is NewMetrics; each call gets a fresh registry, so
// tests can create as many as they like.
func NewMetricsForTesting() *Metrics {
	return NewMetrics()
}

// WriteTextfile writes the current values in the Prometheus text format,
// for the node exporter textfile collector. An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
