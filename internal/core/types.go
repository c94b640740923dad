// Package core provides the in-memory analytical record store for the
// e-commerce sales dataset. This package has no HTTP or file dependencies
// and can be driven by any frontend.
package core

// Column names of the ingestion boundary. Raw rows are field→value mappings
// keyed by these names; the CSV adapter produces them verbatim from the
// dataset header.
const (
	FieldInvoiceNo   = "InvoiceNo"
	FieldStockCode   = "StockCode"
	FieldDescription = "Description"
	FieldQuantity    = "Quantity"
	FieldInvoiceDate = "InvoiceDate"
	FieldUnitPrice   = "UnitPrice"
	FieldCustomerID  = "CustomerID"
	FieldCountry     = "Country"
)

// Columns lists the dataset fields in canonical order.
var Columns = []string{
	FieldInvoiceNo,
	FieldStockCode,
	FieldDescription,
	FieldQuantity,
	FieldInvoiceDate,
	FieldUnitPrice,
	FieldCustomerID,
	FieldCountry,
}

// RawRow is one untyped ingestion row: dataset column name → cell value.
type RawRow map[string]string

// TransactionRecord is one invoice line item. InvoiceNo is not unique across
// records (one invoice spans many line items). Total is derived and must
// always equal Quantity * UnitPrice.
type TransactionRecord struct {
	InvoiceNo   string  `json:"invoice_no"`
	StockCode   string  `json:"stock_code"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	InvoiceDate string  `json:"invoice_date"`
	UnitPrice   float64 `json:"unit_price"`
	CustomerID  string  `json:"customer_id"`
	Country     string  `json:"country"`
	Total       float64 `json:"total"`
}

// RecordColumns lists the export column names for a full record dump,
// matching the field order of TransactionRecord.
var RecordColumns = []string{
	"invoice_no", "stock_code", "description", "quantity",
	"invoice_date", "unit_price", "customer_id", "country", "total",
}

// Row returns the record's values as strings in RecordColumns order.
func (r TransactionRecord) Row() []string {
	return []string{
		r.InvoiceNo,
		r.StockCode,
		r.Description,
		FormatInt(r.Quantity),
		r.InvoiceDate,
		FormatFloat(r.UnitPrice),
		r.CustomerID,
		r.Country,
		FormatFloat(r.Total),
	}
}

// ProductAggregate accumulates per-product statistics. An entry is created on
// first sighting of a stock code and only ever grows: record updates and
// deletes do not rewind it.
type ProductAggregate struct {
	Description   string  `json:"description"`
	SalesCount    int     `json:"vendas_total"`
	QuantityTotal int     `json:"quantidade_total"`
	RevenueTotal  float64 `json:"receita_total"`
}

// CustomerAggregate accumulates per-customer statistics for non-empty
// customer IDs. Country is the country of the customer's first purchase.
type CustomerAggregate struct {
	Country       string  `json:"pais"`
	PurchaseCount int     `json:"compras_total"`
	QuantityTotal int     `json:"quantidade_total"`
	SpendTotal    float64 `json:"gasto_total"`
}

// CountryStats tracks per-country activity for non-empty countries: every
// invoice number seen, in arrival order, plus a running sale count.
type CountryStats struct {
	InvoiceNos []string `json:"invoice_nos"`
	Sales      int      `json:"total_vendas"`
}

// RecordPatch is a partial update for a record. Only quantity, unit price and
// description are mutable; identity and history fields cannot be patched.
type RecordPatch struct {
	Quantity    *int     `json:"quantity,omitempty"`
	UnitPrice   *float64 `json:"unit_price,omitempty"`
	Description *string  `json:"description,omitempty"`
}

// ProductRank is one entry of the top-products ranking.
type ProductRank struct {
	StockCode string           `json:"stock_code"`
	Aggregate ProductAggregate `json:"aggregate"`
}

// CountryRank is one entry of the top-countries ranking.
type CountryRank struct {
	Country string `json:"pais"`
	Sales   int    `json:"total_vendas"`
}

// Averages holds the one-pass aggregate metrics over all records: absolute
// totals plus the derived per-sale averages, returned together.
type Averages struct {
	TotalSales      int     `json:"total_vendas"`
	RevenueTotal    float64 `json:"receita_total"`
	QuantityTotal   int     `json:"quantidade_total"`
	RevenuePerSale  float64 `json:"receita_media_por_venda"`
	QuantityPerSale float64 `json:"quantidade_media_por_venda"`
	AvgUnitPrice    float64 `json:"preco_medio_unitario"`
}

// CountryReport is the detailed per-country breakdown.
type CountryReport struct {
	Country         string  `json:"pais"`
	TotalSales      int     `json:"total_vendas"`
	RevenueTotal    float64 `json:"receita_total"`
	QuantityTotal   int     `json:"quantidade_total"`
	AvgRevenue      float64 `json:"receita_media"`
	UniqueProducts  int     `json:"produtos_unicos"`
	UniqueCustomers int     `json:"clientes_unicos"`
}
