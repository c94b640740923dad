// Package ingest feeds raw dataset rows into the record store.
//
// Ingestion is batch tolerant: per-row failures are counted and skipped,
// never fatal to the whole load. Only a broken source (unreadable header,
// I/O failure, cancellation) aborts a batch.
package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ecomlab/salesdesk/internal/core"
	"github.com/ecomlab/salesdesk/internal/metrics"
)

// progressEvery is how many loaded rows pass between progress log lines.
const progressEvery = 50000

// Result summarizes one ingestion batch.
type Result struct {
	ID       string        `json:"id"`
	Loaded   int           `json:"loaded"`
	Invalid  int           `json:"invalid"`  // rejected by store validation
	Decode   int           `json:"decode"`   // unreadable rows skipped before validation
	Duration time.Duration `json:"duration"`
}

// Loader moves rows from a RowSource into a RecordStore.
type Loader struct {
	store   *core.RecordStore
	metrics *metrics.Metrics // optional
}

// NewLoader creates a loader writing to store. metrics may be nil.
func NewLoader(store *core.RecordStore, m *metrics.Metrics) *Loader {
	return &Loader{store: store, metrics: m}
}

// Load drains src into the store. Row-level failures (validation rejections
// and decode errors) are counted in the Result and skipped. The returned
// error is non-nil only when the source itself fails or ctx is cancelled; in
// that case the Result still reflects the rows processed so far.
func (l *Loader) Load(ctx context.Context, src RowSource) (Result, error) {
	res := Result{ID: uuid.New().String()}
	start := time.Now()

	logger := slog.With("load_id", res.ID)
	logger.Info("ingestion started")

	for {
		if err := ctx.Err(); err != nil {
			res.Duration = time.Since(start)
			return res, err
		}

		row, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			var rowErr *RowError
			if errors.As(err, &rowErr) {
				res.Decode++
				l.count(func(m *metrics.Metrics) { m.RowsDecode.Inc() })
				if res.Decode <= 5 {
					logger.Warn("unreadable row skipped", "line", rowErr.Line, "error", rowErr.Err)
				}
				continue
			}
			res.Duration = time.Since(start)
			return res, err
		}

		if _, err := l.store.Add(row); err != nil {
			res.Invalid++
			l.count(func(m *metrics.Metrics) { m.RowsInvalid.Inc() })
			if res.Invalid <= 5 {
				logger.Warn("row rejected", "error", err)
			}
			continue
		}

		res.Loaded++
		l.count(func(m *metrics.Metrics) { m.RowsIngested.Inc() })
		if res.Loaded%progressEvery == 0 {
			logger.Info("ingestion progress", "loaded", res.Loaded)
		}
	}

	res.Duration = time.Since(start)
	if l.metrics != nil {
		l.metrics.StoreRecords.Set(float64(l.store.Len()))
	}

	logger.Info("ingestion finished",
		"loaded", res.Loaded,
		"invalid", res.Invalid,
		"decode_errors", res.Decode,
		"duration", res.Duration,
	)
	return res, nil
}

// count applies fn when metrics are configured.
func (l *Loader) count(fn func(*metrics.Metrics)) {
	if l.metrics != nil {
		fn(l.metrics)
	}
}
