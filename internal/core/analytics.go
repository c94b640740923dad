package core

// analytics.go implements the read-only aggregation engine built on top of
// the RecordStore: averages, rankings, range filters and per-country reports.
// Nothing here mutates store state.

import (
	"fmt"
	"sort"
)

// DefaultRankingLimit is the ranking size used when a caller does not ask for
// a specific limit.
const DefaultRankingLimit = 10

// AnalyticsEngine computes derived reports from a RecordStore.
type AnalyticsEngine struct {
	store *RecordStore
}

// NewAnalyticsEngine creates an engine reading from store.
func NewAnalyticsEngine(store *RecordStore) *AnalyticsEngine {
	return &AnalyticsEngine{store: store}
}

// Averages computes, in a single pass over all records, the absolute totals
// (sale count, revenue, quantity) and the per-sale averages derived from
// them. An empty store returns ErrNoRecords instead of dividing by zero.
func (a *AnalyticsEngine) Averages() (Averages, error) {
	records := a.store.All()
	if len(records) == 0 {
		return Averages{}, ErrNoRecords
	}

	var (
		revenue   float64
		quantity  int
		unitPrice float64
	)
	for _, rec := range records {
		revenue += rec.Total
		quantity += rec.Quantity
		unitPrice += rec.UnitPrice
	}

	n := len(records)
	return Averages{
		TotalSales:      n,
		RevenueTotal:    revenue,
		QuantityTotal:   quantity,
		RevenuePerSale:  revenue / float64(n),
		QuantityPerSale: float64(quantity) / float64(n),
		AvgUnitPrice:    unitPrice / float64(n),
	}, nil
}

// TopProducts ranks products by total quantity sold, descending. Ties keep
// first-seen order (stable sort over the store's insertion-ordered
// aggregates). A limit <= 0 falls back to DefaultRankingLimit; a limit past
// the number of products returns all of them.
func (a *AnalyticsEngine) TopProducts(limit int) []ProductRank {
	if limit <= 0 {
		limit = DefaultRankingLimit
	}
	ranks := a.store.Products()
	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].Aggregate.QuantityTotal > ranks[j].Aggregate.QuantityTotal
	})
	if len(ranks) > limit {
		ranks = ranks[:limit]
	}
	return ranks
}

// TopCountries ranks countries by sale count, descending, ties broken by
// first-seen order.
func (a *AnalyticsEngine) TopCountries(limit int) []CountryRank {
	if limit <= 0 {
		limit = DefaultRankingLimit
	}
	ranks := a.store.Countries()
	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].Sales > ranks[j].Sales
	})
	if len(ranks) > limit {
		ranks = ranks[:limit]
	}
	return ranks
}

// FilterByValue returns every record whose total falls within [min, max],
// bounds inclusive, in document order. Pass math.Inf(1) as max for an open
// upper bound.
func (a *AnalyticsEngine) FilterByValue(min, max float64) []TransactionRecord {
	var out []TransactionRecord
	for _, rec := range a.store.All() {
		if rec.Total >= min && rec.Total <= max {
			out = append(out, rec)
		}
	}
	return out
}

// CountryReport builds the detailed breakdown for one country, matched
// case-insensitively. When the country has no sales the returned error wraps
// ErrNoRecords and carries a message suitable for direct display.
func (a *AnalyticsEngine) CountryReport(name string) (CountryReport, error) {
	records := a.store.FindByCountry(name)
	if len(records) == 0 {
		return CountryReport{}, fmt.Errorf("%w: no sales found for country %q", ErrNoRecords, name)
	}

	var (
		revenue   float64
		quantity  int
		products  = make(map[string]struct{})
		customers = make(map[string]struct{})
	)
	for _, rec := range records {
		revenue += rec.Total
		quantity += rec.Quantity
		products[rec.StockCode] = struct{}{}
		if rec.CustomerID != "" {
			customers[rec.CustomerID] = struct{}{}
		}
	}

	return CountryReport{
		Country:         name,
		TotalSales:      len(records),
		RevenueTotal:    revenue,
		QuantityTotal:   quantity,
		AvgRevenue:      revenue / float64(len(records)),
		UniqueProducts:  len(products),
		UniqueCustomers: len(customers),
	}, nil
}
