package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentLine is the JSON shape of one item row inside documents.lines.
type DocumentLine struct {
	ItemID    string          `json:"itemID"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Document is the DB row shape for the documents table. Lines are stored as
// a JSONB array; they are immutable once the document exists.
type Document struct {
	DocumentID         string          `db:"document_id"`
	CompanyID          string          `db:"company_id"`
	Kind               string          `db:"kind"`
	PartyID            string          `db:"party_id"`
	PartyName          string          `db:"party_name"`
	DocumentDate       time.Time       `db:"document_date"`
	CurrencyCode       string          `db:"currency_code"`
	ExchangeRate       decimal.Decimal `db:"exchange_rate"`
	Lines              []DocumentLine  `db:"lines"`
	Total              decimal.Decimal `db:"total"`
	PaidAmount         decimal.Decimal `db:"paid_amount"`
	IsCredit           bool            `db:"is_credit"`
	Status             string          `db:"status"`
	IsPosted           bool            `db:"is_posted"`
	JournalID          *string         `db:"journal_id"`           // Nullable
	OriginalDocumentID *string         `db:"original_document_id"` // Nullable
	Notes              string          `db:"notes"`
	AuditFields
}
