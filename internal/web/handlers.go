package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ecomlab/salesdesk/internal/core"
	"github.com/ecomlab/salesdesk/internal/ingest"
	"github.com/ecomlab/salesdesk/internal/logging"
)

// defaultPageSize bounds record listings; the canonical sequence can hold
// half a million rows.
const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// handleHealth reports liveness and current store sizes.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"store":  s.store.Summary(),
	})
}

// handleCreateRecord adds a single record from a JSON body.
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	var req core.CreateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, fmt.Errorf("decode request: %w", err), http.StatusBadRequest)
		return
	}

	rec, err := s.crud.Create(req)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	s.updateStoreGauge()

	respondJSON(w, http.StatusCreated, rec)
}

// handleListRecords returns a page of the canonical sequence.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage := queryInt(r, "per_page", defaultPageSize)
	if perPage < 1 {
		perPage = defaultPageSize
	}
	if perPage > maxPageSize {
		perPage = maxPageSize
	}

	records := s.crud.List((page-1)*perPage, perPage)
	respondJSON(w, http.StatusOK, map[string]any{
		"records":  records,
		"page":     page,
		"per_page": perPage,
		"total":    s.store.Len(),
	})
}

// handleSearchRecords filters records by product code, country, or total
// value range. Exactly one filter family applies per request.
func (s *Server) handleSearchRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	switch {
	case q.Get("product") != "":
		respondJSON(w, http.StatusOK, recordList(s.crud.ByProduct(q.Get("product"))))

	case q.Get("country") != "":
		respondJSON(w, http.StatusOK, recordList(s.crud.ByCountry(q.Get("country"))))

	case q.Get("min") != "" || q.Get("max") != "":
		min, err := queryFloat(q.Get("min"), 0)
		if err != nil {
			s.respondError(w, r, fmt.Errorf("invalid min: %w", err), http.StatusBadRequest)
			return
		}
		max, err := queryFloat(q.Get("max"), math.Inf(1))
		if err != nil {
			s.respondError(w, r, fmt.Errorf("invalid max: %w", err), http.StatusBadRequest)
			return
		}
		respondJSON(w, http.StatusOK, recordList(s.analytics.FilterByValue(min, max)))

	default:
		s.respondError(w, r, fmt.Errorf("search requires product, country, or min/max"), http.StatusBadRequest)
	}
}

// handleGetRecord returns the first record for an invoice number.
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.crud.Get(chi.URLParam(r, "invoiceNo"))
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// handleUpdateRecord patches the mutable fields of a record. Unknown JSON
// keys are ignored, matching the store's field-level mutation policy.
func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	invoiceNo := chi.URLParam(r, "invoiceNo")

	var patch core.RecordPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.respondError(w, r, fmt.Errorf("decode patch: %w", err), http.StatusBadRequest)
		return
	}

	if err := s.crud.Update(invoiceNo, patch); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	rec, err := s.crud.Get(invoiceNo)
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// handleDeleteRecord removes a record by invoice number.
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if err := s.crud.Delete(chi.URLParam(r, "invoiceNo")); err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	s.updateStoreGauge()
	w.WriteHeader(http.StatusNoContent)
}

// handleAverages returns the one-pass aggregate metrics.
func (s *Server) handleAverages(w http.ResponseWriter, r *http.Request) {
	avg, err := s.analytics.Averages()
	if err != nil {
		s.respondError(w, r, err, 0)
		return
	}
	respondJSON(w, http.StatusOK, avg)
}

// handleTopProducts returns the product ranking by quantity sold.
func (s *Server) handleTopProducts(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", core.DefaultRankingLimit)
	respondJSON(w, http.StatusOK, s.analytics.TopProducts(limit))
}

// handleTopCountries returns the country ranking by sale count.
func (s *Server) handleTopCountries(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", core.DefaultRankingLimit)
	respondJSON(w, http.StatusOK, s.analytics.TopCountries(limit))
}

// handleCountryReport returns the detailed breakdown for one country.
func (s *Server) handleCountryReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.analytics.CountryReport(chi.URLParam(r, "name"))
	if err != nil {
		s.respondError(w, r, err, http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// handleExportRecords streams the full record dump as CSV.
func (s *Server) handleExportRecords(w http.ResponseWriter, r *http.Request) {
	s.serveCSV(w, r, "records.csv", s.exporter.Records)
}

// handleExportProducts streams the per-product report as CSV.
func (s *Server) handleExportProducts(w http.ResponseWriter, r *http.Request) {
	s.serveCSV(w, r, "produtos_relatorio.csv", s.exporter.Products)
}

// handleExportCountries streams the per-country report as CSV.
func (s *Server) handleExportCountries(w http.ResponseWriter, r *http.Request) {
	s.serveCSV(w, r, "paises_relatorio.csv", s.exporter.Countries)
}

// serveCSV renders an export into a buffer so failures (such as an empty
// store) can still produce a proper error response instead of a truncated
// download.
func (s *Server) serveCSV(w http.ResponseWriter, r *http.Request, filename string, write func(wr io.Writer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		s.respondError(w, r, err, 0)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(buf.Bytes())
}

// handleIngest loads a multipart CSV upload into the store. Per-row failures
// are counted, not fatal; the response summarizes the batch.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Ingest.MaxUploadSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, fmt.Errorf("read upload: %w", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	encoding := r.URL.Query().Get("encoding")
	if encoding == "" {
		encoding = s.cfg.Dataset.Encoding
	}

	src, err := ingest.NewCSVSource(ingest.Wrap(file, encoding))
	if err != nil {
		s.respondError(w, r, fmt.Errorf("open csv: %w", err), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.Ingest.Timeout)
	defer cancel()

	result, err := s.loader.Load(ctx, src)
	if err != nil {
		s.respondError(w, r, fmt.Errorf("ingest %s: %w", header.Filename, err), 0)
		return
	}
	s.updateStoreGauge()

	logging.FromContext(r.Context()).Info("dataset ingested",
		"file", header.Filename,
		"loaded", result.Loaded,
		"invalid", result.Invalid,
	)
	respondJSON(w, http.StatusOK, result)
}

// updateStoreGauge refreshes the store size metric after a mutation.
func (s *Server) updateStoreGauge() {
	if s.metrics != nil {
		s.metrics.StoreRecords.Set(float64(s.store.Len()))
	}
}

// recordList normalizes nil slices to empty ones so JSON clients always see
// an array.
func recordList(records []core.TransactionRecord) []core.TransactionRecord {
	if records == nil {
		return []core.TransactionRecord{}
	}
	return records
}

// queryInt parses an integer query parameter, falling back to def.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// queryFloat parses a float query parameter, falling back to def when empty.
func queryFloat(raw string, def float64) (float64, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.ParseFloat(raw, 64)
}
