package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind is the closed set of business document variants the posting
// rules understand. Posting is an exhaustive switch over this set.
type DocumentKind string

const (
	SaleDoc           DocumentKind = "SALE"
	PurchaseOrderDoc  DocumentKind = "PURCHASE_ORDER"
	SalesReturnDoc    DocumentKind = "SALES_RETURN"
	PurchaseReturnDoc DocumentKind = "PURCHASE_RETURN"
)

// DocumentStatus tracks the lifecycle of a document ahead of posting.
// Receiving applies only to purchase orders: stock moves on receipt,
// the journal is booked on the later posting step.
type DocumentStatus string

const (
	DocumentOpen     DocumentStatus = "OPEN"
	DocumentReceived DocumentStatus = "RECEIVED"
)

// DocumentLine is one item row on a business document.
type DocumentLine struct {
	ItemID    string          `json:"itemID"`    // FK -> inventory_items.item_id
	Quantity  int64           `json:"quantity"`  // Units of the item, positive
	UnitPrice decimal.Decimal `json:"unitPrice"` // Per-unit price, document currency
}

// Document represents a sale, purchase order, sales return or purchase
// return. The exchange rate is snapshotted at creation and never changes,
// so later rate updates cannot retroactively alter posted documents.
// PaidAmount is kept in the document's own transaction currency and only
// ever grows, via payment allocations.
type Document struct {
	DocumentID   string          `json:"documentID"` // Primary Key (UUID)
	CompanyID    string          `json:"companyID"`  // FK -> companies.company_id (Not Null)
	Kind         DocumentKind    `json:"kind"`
	PartyID      string          `json:"partyID"`   // FK -> parties.party_id (Not Null)
	PartyName    string          `json:"partyName"` // Denormalized display name
	DocumentDate time.Time       `json:"documentDate"`
	CurrencyCode string          `json:"currencyCode"`
	ExchangeRate decimal.Decimal `json:"exchangeRate"` // Base units per 1 document-currency unit, snapshot
	Lines        []DocumentLine  `json:"lines"`
	Total        decimal.Decimal `json:"total"`      // Transaction currency, VAT inclusive
	PaidAmount   decimal.Decimal `json:"paidAmount"` // Transaction currency, monotonically non-decreasing
	IsCredit     bool            `json:"isCredit"`   // Credit documents move party debt
	Status       DocumentStatus  `json:"status"`
	IsPosted     bool            `json:"isPosted"`
	JournalID    *string         `json:"journalID,omitempty"` // Set once posted
	// OriginalDocumentID links a return to the sale/purchase it reverses.
	OriginalDocumentID *string `json:"originalDocumentID,omitempty"`
	Notes              string  `json:"notes"`
	AuditFields
}

// Remaining returns the unpaid portion of the document total in the
// document's transaction currency.
func (d *Document) Remaining() decimal.Decimal {
	return d.Total.Sub(d.PaidAmount)
}

// RemainingBase returns the unpaid portion converted to base currency using
// the document's snapshotted exchange rate.
func (d *Document) RemainingBase() decimal.Decimal {
	return d.Remaining().Mul(d.ExchangeRate)
}

// IsReceivable reports whether the document represents money owed to the
// company (true) or by the company (false).
func (k DocumentKind) IsReceivable() bool {
	return k == SaleDoc || k == PurchaseReturnDoc
}
