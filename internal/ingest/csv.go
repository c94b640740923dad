package ingest

// csv.go adapts a CSV stream into the row-mapping sequence the store
// consumes. The header row names the fields; each data row becomes a
// column→value mapping. The adapter tolerates short rows (missing trailing
// cells default to empty) and ragged quoting, leaving semantic validation to
// the store.

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/ecomlab/salesdesk/internal/core"
)

// RowSource is a lazy sequence of ingestion rows. Next returns io.EOF after
// the last row. A *RowError marks a row-level decode failure the caller may
// skip; any other error is fatal to the batch.
type RowSource interface {
	Next() (core.RawRow, error)
}

// RowError is a decode failure confined to a single row.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// CSVSource reads dataset rows from a CSV stream.
type CSVSource struct {
	reader *csv.Reader
	header []string
	line   int
}

// NewCSVSource creates a source over r and reads the header row. It fails
// when the header is unreadable or lacks the required identity columns.
func NewCSVSource(r io.Reader) (*CSVSource, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // tolerate short rows
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = canonicalColumn(core.CleanCell(header[i]))
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	return &CSVSource{reader: cr, header: header, line: 1}, nil
}

// canonicalColumn maps a header cell to its canonical dataset column name
// when it matches one case-insensitively, so row mappings always carry the
// spelling the store looks up. Unknown columns pass through unchanged.
func canonicalColumn(name string) string {
	for _, col := range core.Columns {
		if strings.EqualFold(name, col) {
			return col
		}
	}
	return name
}

// validateHeader checks that the identity columns exist; without them every
// row would fail, so the batch is rejected up front.
func validateHeader(header []string) error {
	var missing []string
	for _, required := range []string{core.FieldInvoiceNo, core.FieldStockCode} {
		found := false
		for _, h := range header {
			if strings.EqualFold(h, required) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Header returns the cleaned header row.
func (s *CSVSource) Header() []string {
	return s.header
}

// Next returns the following row as a column→value mapping. Cells beyond the
// header width are dropped; missing trailing cells are simply absent from
// the mapping. CSV parse failures are reported as *RowError so the loader
// can count and skip them.
func (s *CSVSource) Next() (core.RawRow, error) {
	record, err := s.reader.Read()
	s.line++
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		if _, ok := err.(*csv.ParseError); ok {
			return nil, &RowError{Line: s.line, Err: err}
		}
		return nil, err
	}

	row := make(core.RawRow, len(s.header))
	for i, name := range s.header {
		if i < len(record) {
			row[name] = record[i]
		}
	}
	return row, nil
}
