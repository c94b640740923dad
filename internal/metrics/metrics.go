// Package metrics holds the Prometheus instruments for ingestion and store
// size. Collectors register on the default registry; expose them via
// promhttp on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	RowsIngested prometheus.Counter
	RowsInvalid  prometheus.Counter
	RowsDecode   prometheus.Counter
	StoreRecords prometheus.Gauge
}

// New creates and registers all metrics.
func New() *Metrics {
	return &Metrics{
		RowsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "salesdesk_rows_ingested_total",
			Help: "Rows successfully added to the record store",
		}),
		RowsInvalid: promauto.NewCounter(prometheus.CounterOpts{
			Name: "salesdesk_rows_invalid_total",
			Help: "Rows rejected by validation during ingestion",
		}),
		RowsDecode: promauto.NewCounter(prometheus.CounterOpts{
			Name: "salesdesk_rows_decode_errors_total",
			Help: "Rows skipped because they could not be decoded",
		}),
		StoreRecords: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "salesdesk_store_records",
			Help: "Current number of records in the store",
		}),
	}
}
