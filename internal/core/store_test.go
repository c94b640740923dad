package core

import (
	"errors"
	"testing"
)

// row builds a minimal valid ingestion row, overridden by overrides.
func row(overrides map[string]string) RawRow {
	r := RawRow{
		FieldInvoiceNo:   "536365",
		FieldStockCode:   "85123A",
		FieldDescription: "WHITE HANGING HEART T-LIGHT HOLDER",
		FieldQuantity:    "6",
		FieldInvoiceDate: "12/1/2010 8:26",
		FieldUnitPrice:   "2.55",
		FieldCustomerID:  "17850",
		FieldCountry:     "United Kingdom",
	}
	for k, v := range overrides {
		r[k] = v
	}
	return r
}

func mustAdd(t *testing.T, s *RecordStore, r RawRow) {
	t.Helper()
	if _, err := s.Add(r); err != nil {
		t.Fatalf("Add(%v) failed: %v", r, err)
	}
}

func TestAddComputesTotal(t *testing.T) {
	s := NewRecordStore()
	mustAdd(t, s, row(map[string]string{FieldQuantity: "6", FieldUnitPrice: "2.55"}))

	rec, ok := s.FindByInvoice("536365")
	if !ok {
		t.Fatal("record not found after Add")
	}
	// The expectation must round the same way the store computes: convert
	// first, multiply second. The exact constant 6*2.55 is one ulp off.
	if want := float64(6) * 2.55; rec.Total != want {
		t.Errorf("Total = %v, want %v", rec.Total, want)
	}
	if rec.Quantity != 6 || rec.UnitPrice != 2.55 {
		t.Errorf("record fields = %d, %v; want 6, 2.55", rec.Quantity, rec.UnitPrice)
	}
}

func TestAddNormalizesTypes(t *testing.T) {
	s := NewRecordStore()
	mustAdd(t, s, row(map[string]string{
		FieldQuantity:   "2.0", // float-style quantity must truncate
		FieldUnitPrice:  "£3.00",
		FieldCustomerID: "",
		FieldCountry:    "",
	}))

	rec, _ := s.FindByInvoice("536365")
	if rec.Quantity != 2 {
		t.Errorf("Quantity = %d, want 2", rec.Quantity)
	}
	if rec.UnitPrice != 3 {
		t.Errorf("UnitPrice = %v, want 3", rec.UnitPrice)
	}
	if rec.CustomerID != "" || rec.Country != "" {
		t.Errorf("optional fields should stay empty, got %q, %q", rec.CustomerID, rec.Country)
	}
}

func TestAddMissingOptionalFields(t *testing.T) {
	s := NewRecordStore()
	// Row with only the required identity columns present at all.
	if _, err := s.Add(RawRow{FieldInvoiceNo: "1", FieldStockCode: "A"}); err != nil {
		t.Fatalf("Add with missing optional fields failed: %v", err)
	}
	rec, _ := s.FindByInvoice("1")
	if rec.Quantity != 0 || rec.UnitPrice != 0 || rec.Total != 0 {
		t.Errorf("defaults not applied: %+v", rec)
	}
}

func TestAddRejectsMissingRequiredFields(t *testing.T) {
	tests := []struct {
		name string
		row  RawRow
	}{
		{name: "empty invoice no", row: row(map[string]string{FieldInvoiceNo: ""})},
		{name: "empty stock code", row: row(map[string]string{FieldStockCode: ""})},
		{name: "whitespace invoice no", row: row(map[string]string{FieldInvoiceNo: "   "})},
		{name: "absent keys", row: RawRow{FieldQuantity: "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewRecordStore()
			_, err := s.Add(tt.row)
			if err == nil {
				t.Fatal("Add succeeded, want validation error")
			}
			if !IsValidation(err) {
				t.Errorf("error = %v, want ValidationError", err)
			}
			// Nothing may change on rejection: store size, aggregates, indices.
			if got := s.Summary(); got != (Stats{}) {
				t.Errorf("store mutated by rejected row: %+v", got)
			}
		})
	}
}

func TestAddRejectsBadNumbers(t *testing.T) {
	s := NewRecordStore()
	_, err := s.Add(row(map[string]string{FieldQuantity: "six"}))
	if err == nil || !IsValidation(err) {
		t.Fatalf("Add with bad quantity: err = %v, want ValidationError", err)
	}
	if s.Len() != 0 {
		t.Errorf("store size = %d after rejected row, want 0", s.Len())
	}
}

func TestFindByInvoiceFirstMatch(t *testing.T) {
	s := NewRecordStore()
	mustAdd(t, s, row(map[string]string{FieldStockCode: "A", FieldQuantity: "1"}))
	mustAdd(t, s, row(map[string]string{FieldStockCode: "B", FieldQuantity: "2"}))

	rec, ok := s.FindByInvoice("536365")
	if !ok {
		t.Fatal("record not found")
	}
	if rec.StockCode != "A" {
		t.Errorf("FindByInvoice returned %q, want first match %q", rec.StockCode, "A")
	}
}

func TestFindByCountryCaseInsensitive(t *testing.T) {
	s := NewRecordStore()
	mustAdd(t, s, row(map[string]string{FieldCountry: "United Kingdom"}))
	mustAdd(t, s, row(map[string]string{FieldInvoiceNo: "2", FieldCountry: "France"}))

	for _, query := range []string{"united kingdom", "UNITED KINGDOM", "United Kingdom"} {
		if got := s.FindByCountry(query); len(got) != 1 {
			t.Errorf("FindByCountry(%q) returned %d records, want 1", query, len(got))
		}
	}
	// Whole-field match, not substring.
	if got := s.FindByCountry("United"); len(got) != 0 {
		t.Errorf("FindByCountry(%q) returned %d records, want 0", "United", len(got))
	}
}

func TestFindByProductPreservesOrder(t *testing.T) {
	s := NewRecordStore()
	mustAdd(t, s, row(map[string]string{FieldInvoiceNo: "1", FieldQuantity: "1"}))
	mustAdd(t, s, row(map[string]string{FieldInvoiceNo: "2", FieldQuantity: "2"}))
	mustAdd(t, s, row(map[string]string{FieldInvoiceNo: "3", FieldStockCode: "OTHER"}))

	got := s.FindByProduct("85123A")
	if len(got) != 2 {
		t.Fatalf("FindByProduct returned %d records, want 2", len(got))
	}
	if got[0].InvoiceNo != "1" || got[1].InvoiceNo != "2" {
		t.Errorf("document order not preserved: %q, %q", got[0].InvoiceNo, got[1].InvoiceNo)
	}
}

func TestUpdateRecomputesTotal(t *testing.T) {
	s := NewRecordStore()
	mustAdd(t, s, row(map[string]string{FieldQuantity: "6", FieldUnitPrice: "2.55"}))

	qty := 10
	if err := s.Update("536365", RecordPatch{Quantity: &qty}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	rec, _ := s.FindByInvoice("536365")
	if want := float64(10) * 2.55; rec.Total != want {
		t.Errorf("Total after quantity update = %v, want %v", rec.Total, want)
	}

	price := 4.0
	if err := s.Update("536365", RecordPatch{UnitPrice: &price}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	rec, _ = s.FindByInvoice("536365")
	if want := 10 * 4.0; rec.Total != want {
		t.Errorf("Total after price update = %v, want %v", rec.Total, want)
	}
}

func TestUpdateEmptyPatchSucceedsUnchanged(t *testing.T) {
	s := NewRecordStore()
	mustAdd(t, s, row(nil))
	before, _ := s.FindByInvoice("536365")

	// A patch with no mutable fields set (e.g. a caller trying to change
	// country) must succeed and change nothing.
	if err := s.Update("536365", RecordPatch{}); err != nil {
		t.Fatalf("empty patch failed: %v", err)
	}
	after, _ := s.FindByInvoice("536365")
	if before != after {
		t.Errorf("record changed by empty patch:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestUpdateNotFound(t *testing.T) {
	s := NewRecordStore()
	err := s.Update("missing", RecordPatch{})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Update on missing record: err = %v, want ErrNotFound", err)
	}
}

func TestDeleteRemovesFirstMatch(t *testing.T) {
	s := NewRecordStore()
	mustAdd(t, s, row(map[string]string{FieldStockCode: "A"}))
	mustAdd(t, s, row(map[string]string{FieldStockCode: "B"}))
	mustAdd(t, s, row(map[string]string{FieldInvoiceNo: "2"}))

	if err := s.Delete("536365"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("store size = %d after delete, want 2", s.Len())
	}
	// The second line item of the same invoice survives.
	rec, ok := s.FindByInvoice("536365")
	if !ok || rec.StockCode != "B" {
		t.Errorf("remaining record = %+v, ok = %v; want stock code B", rec, ok)
	}
}

func TestDeleteThenFindAndDoubleDelete(t *testing.T) {
	s := NewRecordStore()
	mustAdd(t, s, row(nil))

	if err := s.Delete("536365"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok := s.FindByInvoice("536365"); ok {
		t.Error("record still found after delete")
	}
	if s.Len() != 0 {
		t.Errorf("store size = %d, want 0", s.Len())
	}
	if err := s.Delete("536365"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}

// Aggregates are accumulate-only: updates and deletes never rewind them.
// This pins the append-only audit-aggregate behavior.
func TestAggregatesSurviveUpdateAndDelete(t *testing.T) {
	s := NewRecordStore()
	mustAdd(t, s, row(map[string]string{FieldQuantity: "6", FieldUnitPrice: "2.0"}))

	wantAgg := ProductAggregate{
		Description:   "WHITE HANGING HEART T-LIGHT HOLDER",
		SalesCount:    1,
		QuantityTotal: 6,
		RevenueTotal:  12,
	}

	qty := 100
	if err := s.Update("536365", RecordPatch{Quantity: &qty}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if agg, _ := s.Product("85123A"); agg != wantAgg {
		t.Errorf("product aggregate changed by update: %+v", agg)
	}

	if err := s.Delete("536365"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if agg, _ := s.Product("85123A"); agg != wantAgg {
		t.Errorf("product aggregate changed by delete: %+v", agg)
	}
	if cust, ok := s.Customer("17850"); !ok || cust.PurchaseCount != 1 {
		t.Errorf("customer aggregate changed by delete: %+v, ok = %v", cust, ok)
	}
	countries := s.Countries()
	if len(countries) != 1 || countries[0].Sales != 1 {
		t.Errorf("country index changed by delete: %+v", countries)
	}
}

func TestCustomerAggregateSkipsAnonymous(t *testing.T) {
	s := NewRecordStore()
	mustAdd(t, s, row(map[string]string{FieldCustomerID: ""}))
	if got := s.Summary().Customers; got != 0 {
		t.Errorf("anonymous sale indexed a customer: count = %d", got)
	}
}

func TestCustomerAggregateKeepsFirstSeenCountry(t *testing.T) {
	s := NewRecordStore()
	mustAdd(t, s, row(map[string]string{FieldCountry: "France"}))
	mustAdd(t, s, row(map[string]string{FieldInvoiceNo: "2", FieldCountry: "Germany"}))

	cust, ok := s.Customer("17850")
	if !ok {
		t.Fatal("customer not indexed")
	}
	if cust.Country != "France" {
		t.Errorf("customer country = %q, want first-seen %q", cust.Country, "France")
	}
	if cust.PurchaseCount != 2 {
		t.Errorf("purchase count = %d, want 2", cust.PurchaseCount)
	}
}

func TestCountryIndexRecordsInvoiceOrder(t *testing.T) {
	s := NewRecordStore()
	mustAdd(t, s, row(map[string]string{FieldInvoiceNo: "10", FieldCountry: "Brazil"}))
	mustAdd(t, s, row(map[string]string{FieldInvoiceNo: "11", FieldCountry: "Brazil"}))

	ranks := s.Countries()
	if len(ranks) != 1 || ranks[0].Country != "Brazil" || ranks[0].Sales != 2 {
		t.Fatalf("Countries() = %+v, want Brazil with 2 sales", ranks)
	}
}

func TestRecordsPagination(t *testing.T) {
	s := NewRecordStore()
	for i := 0; i < 5; i++ {
		mustAdd(t, s, row(map[string]string{FieldInvoiceNo: FormatInt(i)}))
	}

	tests := []struct {
		name   string
		offset int
		limit  int
		want   []string
	}{
		{name: "first page", offset: 0, limit: 2, want: []string{"0", "1"}},
		{name: "middle page", offset: 2, limit: 2, want: []string{"2", "3"}},
		{name: "short last page", offset: 4, limit: 2, want: []string{"4"}},
		{name: "past the end", offset: 10, limit: 2, want: nil},
		{name: "no limit", offset: 0, limit: 0, want: []string{"0", "1", "2", "3", "4"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := s.Records(tt.offset, tt.limit)
			if len(page) != len(tt.want) {
				t.Fatalf("page size = %d, want %d", len(page), len(tt.want))
			}
			for i, rec := range page {
				if rec.InvoiceNo != tt.want[i] {
					t.Errorf("page[%d] = %q, want %q", i, rec.InvoiceNo, tt.want[i])
				}
			}
		})
	}
}
