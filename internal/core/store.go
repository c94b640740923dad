package core

// store.go implements the RecordStore: the canonical record sequence plus the
// three denormalized indices derived from it (by product, by customer, by
// country).
//
// The store exclusively owns all four structures. Every mutation goes through
// a store method under the write lock, because the index updates are
// multi-step and must not interleave. Read methods take the read lock and
// return copies, so no caller ever holds a reference into store state.
//
// The indices are accumulate-only: Update and Delete deliberately leave them
// as they were at insertion time, giving an append-only audit view of
// everything ever ingested.

import (
	"strings"
	"sync"
)

// RecordStore owns the canonical, insertion-ordered list of transaction
// records and the aggregate indices derived from it.
type RecordStore struct {
	mu sync.RWMutex

	records []TransactionRecord

	products     map[string]*ProductAggregate
	productOrder []string // stock codes in first-seen order

	customers map[string]*CustomerAggregate

	countries    map[string]*CountryStats
	countryOrder []string // countries in first-seen order
}

// NewRecordStore returns an empty store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		products:  make(map[string]*ProductAggregate),
		customers: make(map[string]*CustomerAggregate),
		countries: make(map[string]*CountryStats),
	}
}

// Add validates and normalizes a raw ingestion row, appends the resulting
// record to the canonical sequence, and updates the product, customer and
// country indices as one logical step. On any validation failure nothing is
// mutated. The stored record is returned.
func (s *RecordStore) Add(row RawRow) (TransactionRecord, error) {
	rec, err := decodeRow(row)
	if err != nil {
		return TransactionRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, rec)
	s.indexProduct(rec)
	s.indexCustomer(rec)
	s.indexCountry(rec)
	return rec, nil
}

// decodeRow converts a raw row into a typed record. It enforces the required
// fields, coerces the numeric fields, defaults the optional ones, and
// computes the derived total.
func decodeRow(row RawRow) (TransactionRecord, error) {
	invoiceNo := CleanCell(row[FieldInvoiceNo])
	stockCode := CleanCell(row[FieldStockCode])
	if invoiceNo == "" {
		return TransactionRecord{}, &ValidationError{Field: FieldInvoiceNo, Message: "required field is empty"}
	}
	if stockCode == "" {
		return TransactionRecord{}, &ValidationError{Field: FieldStockCode, Message: "required field is empty"}
	}

	quantity, err := ParseQuantity(row[FieldQuantity])
	if err != nil {
		return TransactionRecord{}, err
	}
	unitPrice, err := ParsePrice(row[FieldUnitPrice])
	if err != nil {
		return TransactionRecord{}, err
	}

	return TransactionRecord{
		InvoiceNo:   invoiceNo,
		StockCode:   stockCode,
		Description: CleanCell(row[FieldDescription]),
		Quantity:    quantity,
		InvoiceDate: CleanCell(row[FieldInvoiceDate]),
		UnitPrice:   unitPrice,
		CustomerID:  CleanCell(row[FieldCustomerID]),
		Country:     CleanCell(row[FieldCountry]),
		Total:       float64(quantity) * unitPrice,
	}, nil
}

// indexProduct updates the per-product aggregate. Caller holds the write lock.
func (s *RecordStore) indexProduct(rec TransactionRecord) {
	agg, ok := s.products[rec.StockCode]
	if !ok {
		agg = &ProductAggregate{Description: rec.Description}
		s.products[rec.StockCode] = agg
		s.productOrder = append(s.productOrder, rec.StockCode)
	}
	agg.SalesCount++
	agg.QuantityTotal += rec.Quantity
	agg.RevenueTotal += rec.Total
}

// indexCustomer updates the per-customer aggregate. Anonymous sales (empty
// customer ID) are not indexed. Caller holds the write lock.
func (s *RecordStore) indexCustomer(rec TransactionRecord) {
	if rec.CustomerID == "" {
		return
	}
	agg, ok := s.customers[rec.CustomerID]
	if !ok {
		agg = &CustomerAggregate{Country: rec.Country}
		s.customers[rec.CustomerID] = agg
	}
	agg.PurchaseCount++
	agg.QuantityTotal += rec.Quantity
	agg.SpendTotal += rec.Total
}

// indexCountry updates the per-country index. Records without a country are
// not indexed. Caller holds the write lock.
func (s *RecordStore) indexCountry(rec TransactionRecord) {
	if rec.Country == "" {
		return
	}
	stats, ok := s.countries[rec.Country]
	if !ok {
		stats = &CountryStats{}
		s.countries[rec.Country] = stats
		s.countryOrder = append(s.countryOrder, rec.Country)
	}
	stats.InvoiceNos = append(stats.InvoiceNos, rec.InvoiceNo)
	stats.Sales++
}

// Len returns the number of records in the canonical sequence.
func (s *RecordStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// All returns a copy of the canonical sequence in insertion order.
func (s *RecordStore) All() []TransactionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]TransactionRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Records returns a page of the canonical sequence in insertion order.
// Offsets past the end return an empty slice.
func (s *RecordStore) Records(offset, limit int) []TransactionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(s.records) {
		return nil
	}
	end := len(s.records)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	out := make([]TransactionRecord, end-offset)
	copy(out, s.records[offset:end])
	return out
}

// FindByInvoice returns the first record with the given invoice number in
// document order. Linear scan; acceptable for batch-ingest-then-query usage.
func (s *RecordStore) FindByInvoice(invoiceNo string) (TransactionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if rec.InvoiceNo == invoiceNo {
			return rec, true
		}
	}
	return TransactionRecord{}, false
}

// FindByProduct returns all records for a stock code, in document order.
func (s *RecordStore) FindByProduct(stockCode string) []TransactionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []TransactionRecord
	for _, rec := range s.records {
		if rec.StockCode == stockCode {
			out = append(out, rec)
		}
	}
	return out
}

// FindByCountry returns all records whose country matches name, compared
// case-insensitively on the whole field.
func (s *RecordStore) FindByCountry(name string) []TransactionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []TransactionRecord
	for _, rec := range s.records {
		if strings.EqualFold(rec.Country, name) {
			out = append(out, rec)
		}
	}
	return out
}

// Update applies a patch to the first record matching invoiceNo. Only
// quantity, unit price and description are mutable; the derived total is
// unconditionally recomputed afterwards. The aggregate indices are left as
// accumulated at insertion time.
func (s *RecordStore) Update(invoiceNo string, patch RecordPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].InvoiceNo != invoiceNo {
			continue
		}
		rec := &s.records[i]
		if patch.Quantity != nil {
			rec.Quantity = *patch.Quantity
		}
		if patch.UnitPrice != nil {
			rec.UnitPrice = *patch.UnitPrice
		}
		if patch.Description != nil {
			rec.Description = *patch.Description
		}
		rec.Total = float64(rec.Quantity) * rec.UnitPrice
		return nil
	}
	return ErrNotFound
}

// Delete removes the first record matching invoiceNo from the canonical
// sequence. The aggregate indices are left untouched.
func (s *RecordStore) Delete(invoiceNo string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.records {
		if s.records[i].InvoiceNo == invoiceNo {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Products returns the per-product aggregates in first-seen order.
func (s *RecordStore) Products() []ProductRank {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ProductRank, 0, len(s.productOrder))
	for _, code := range s.productOrder {
		out = append(out, ProductRank{StockCode: code, Aggregate: *s.products[code]})
	}
	return out
}

// Product returns the aggregate for one stock code.
func (s *RecordStore) Product(stockCode string) (ProductAggregate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agg, ok := s.products[stockCode]
	if !ok {
		return ProductAggregate{}, false
	}
	return *agg, true
}

// Customer returns the aggregate for one customer ID.
func (s *RecordStore) Customer(customerID string) (CustomerAggregate, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agg, ok := s.customers[customerID]
	if !ok {
		return CustomerAggregate{}, false
	}
	return *agg, true
}

// Countries returns the per-country sale counts in first-seen order.
func (s *RecordStore) Countries() []CountryRank {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]CountryRank, 0, len(s.countryOrder))
	for _, name := range s.countryOrder {
		out = append(out, CountryRank{Country: name, Sales: s.countries[name].Sales})
	}
	return out
}

// Stats summarizes the size of every structure the store owns.
type Stats struct {
	Records   int `json:"records"`
	Products  int `json:"products"`
	Customers int `json:"customers"`
	Countries int `json:"countries"`
}

// Summary returns the current store sizes.
func (s *RecordStore) Summary() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Records:   len(s.records),
		Products:  len(s.products),
		Customers: len(s.customers),
		Countries: len(s.countryOrder),
	}
}
