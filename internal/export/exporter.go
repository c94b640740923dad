// Package export serializes store contents and derived reports into
// comma-delimited tabular streams: one header line, one line per record,
// UTF-8, no trailing blank line.
//
// The exporter reports failure instead of writing anything when asked to
// serialize an empty sequence, so callers never produce header-only files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/ecomlab/salesdesk/internal/core"
)

// Product report column names. These labels are an external contract;
// downstream spreadsheets rely on them.
var productColumns = []string{"stock_code", "description", "vendas_total", "quantidade_total", "receita_total"}

// Country report column names.
var countryColumns = []string{"pais", "total_vendas"}

// Exporter serializes a RecordStore's state and reports to writers.
type Exporter struct {
	store *core.RecordStore
}

// NewExporter creates an exporter reading from store.
func NewExporter(store *core.RecordStore) *Exporter {
	return &Exporter{store: store}
}

// Records writes the full record dump.
func (e *Exporter) Records(w io.Writer) error {
	return WriteRecords(w, e.store.All())
}

// Products writes the per-product aggregate report in first-seen order.
func (e *Exporter) Products(w io.Writer) error {
	return WriteProducts(w, e.store.Products())
}

// Countries writes the per-country report in first-seen order.
func (e *Exporter) Countries(w io.Writer) error {
	return WriteCountries(w, e.store.Countries())
}

// WriteRecords serializes any flat record list. Fails with ErrNoRecords when
// the list is empty; nothing is written in that case.
func WriteRecords(w io.Writer, records []core.TransactionRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("export records: %w", core.ErrNoRecords)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(core.RecordColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(rec.Row()); err != nil {
			return fmt.Errorf("write record %s: %w", rec.InvoiceNo, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteProducts serializes a product ranking or aggregate dump.
func WriteProducts(w io.Writer, ranks []core.ProductRank) error {
	if len(ranks) == 0 {
		return fmt.Errorf("export products: %w", core.ErrNoRecords)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(productColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range ranks {
		row := []string{
			r.StockCode,
			r.Aggregate.Description,
			core.FormatInt(r.Aggregate.SalesCount),
			core.FormatInt(r.Aggregate.QuantityTotal),
			core.FormatFloat(r.Aggregate.RevenueTotal),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write product %s: %w", r.StockCode, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCountries serializes a country ranking or per-country dump.
func WriteCountries(w io.Writer, ranks []core.CountryRank) error {
	if len(ranks) == 0 {
		return fmt.Errorf("export countries: %w", core.ErrNoRecords)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(countryColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range ranks {
		if err := cw.Write([]string{r.Country, core.FormatInt(r.Sales)}); err != nil {
			return fmt.Errorf("write country %s: %w", r.Country, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
