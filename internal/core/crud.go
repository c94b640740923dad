package core

// crud.go provides the CrudService: a thin orchestration layer over the
// RecordStore giving create/read/update/delete a uniform error-result
// contract and a single place where failures are logged. It holds no state
// of its own; every mutation routes through the store so the indices never
// drift.

import "log/slog"

// CreateRecordRequest carries the fields of a manually created sale. It
// mirrors the ingestion row shape so creation and batch ingestion share one
// validation path.
type CreateRecordRequest struct {
	InvoiceNo   string `json:"invoice_no"`
	StockCode   string `json:"stock_code"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	InvoiceDate string `json:"invoice_date"`
	UnitPrice   string `json:"unit_price"`
	CustomerID  string `json:"customer_id"`
	Country     string `json:"country"`
}

// rawRow converts the request into the ingestion mapping the store accepts.
func (r CreateRecordRequest) rawRow() RawRow {
	return RawRow{
		FieldInvoiceNo:   r.InvoiceNo,
		FieldStockCode:   r.StockCode,
		FieldDescription: r.Description,
		FieldQuantity:    r.Quantity,
		FieldInvoiceDate: r.InvoiceDate,
		FieldUnitPrice:   r.UnitPrice,
		FieldCustomerID:  r.CustomerID,
		FieldCountry:     r.Country,
	}
}

// CrudService exposes record-level operations against a RecordStore.
type CrudService struct {
	store *RecordStore
}

// NewCrudService creates a service backed by store.
func NewCrudService(store *RecordStore) *CrudService {
	return &CrudService{store: store}
}

// Create validates and adds a single record, returning it as stored. An
// invoice number may already exist (one invoice spans many line items), so
// the new line item is returned directly rather than looked up again.
func (c *CrudService) Create(req CreateRecordRequest) (TransactionRecord, error) {
	rec, err := c.store.Add(req.rawRow())
	if err != nil {
		slog.Warn("record rejected",
			"invoice_no", req.InvoiceNo,
			"stock_code", req.StockCode,
			"error", err,
		)
		return TransactionRecord{}, err
	}
	slog.Debug("record created", "invoice_no", req.InvoiceNo, "stock_code", req.StockCode)
	return rec, nil
}

// Get returns the first record for an invoice number, or ErrNotFound.
func (c *CrudService) Get(invoiceNo string) (TransactionRecord, error) {
	rec, ok := c.store.FindByInvoice(invoiceNo)
	if !ok {
		return TransactionRecord{}, ErrNotFound
	}
	return rec, nil
}

// List returns a page of records in insertion order.
func (c *CrudService) List(offset, limit int) []TransactionRecord {
	return c.store.Records(offset, limit)
}

// ByProduct returns all records for a stock code.
func (c *CrudService) ByProduct(stockCode string) []TransactionRecord {
	return c.store.FindByProduct(stockCode)
}

// ByCountry returns all records for a country, matched case-insensitively.
func (c *CrudService) ByCountry(name string) []TransactionRecord {
	return c.store.FindByCountry(name)
}

// Update applies a patch to a record. A patch containing no mutable fields
// still succeeds without changing anything.
func (c *CrudService) Update(invoiceNo string, patch RecordPatch) error {
	if err := c.store.Update(invoiceNo, patch); err != nil {
		return err
	}
	slog.Debug("record updated", "invoice_no", invoiceNo)
	return nil
}

// Delete removes a record by invoice number.
func (c *CrudService) Delete(invoiceNo string) error {
	if err := c.store.Delete(invoiceNo); err != nil {
		return err
	}
	slog.Info("record deleted", "invoice_no", invoiceNo)
	return nil
}
