package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartyKind distinguishes customers from suppliers.
type PartyKind string

const (
	Customer PartyKind = "CUSTOMER"
	Supplier PartyKind = "SUPPLIER"
)

// Party is a counterparty (customer or supplier). TotalDebt is the aggregate
// outstanding balance in base currency, independent of any single document:
// for a customer it is what they owe the company, for a supplier what the
// company owes them. It moves on credit document creation, on returns and on
// payment allocation.
type Party struct {
	PartyID   string          `json:"partyID"`   // Primary Key (UUID)
	CompanyID string          `json:"companyID"` // FK -> companies.company_id (Not Null)
	Name      string          `json:"name"`
	Kind      PartyKind       `json:"kind"`
	Phone     string          `json:"phone"` // Nullable
	Notes     string          `json:"notes"` // Nullable
	TotalDebt decimal.Decimal `json:"totalDebt"`
	IsActive  bool            `json:"isActive"`
	AuditFields
}

// PaymentRecordType classifies a payment-history row.
type PaymentRecordType string

const (
	RecordPurchase PaymentRecordType = "PURCHASE"
	RecordPayment  PaymentRecordType = "PAYMENT"
	RecordReturn   PaymentRecordType = "RETURN"
)

// PaymentRecord is one append-only row in a party's payment history. Rows are
// never updated or deleted.
type PaymentRecord struct {
	RecordID     string            `json:"recordID"` // Primary Key (UUID)
	CompanyID    string            `json:"companyID"`
	PartyID      string            `json:"partyID"`
	Date         time.Time         `json:"date"`
	Amount       decimal.Decimal   `json:"amount"` // Base currency
	Type         PaymentRecordType `json:"type"`
	RefID        string            `json:"refID"`  // Document or payment reference
	Method       string            `json:"method"` // Cash, transfer, etc. (free text)
	CurrencyCode string            `json:"currencyCode"`
	ExchangeRate decimal.Decimal   `json:"exchangeRate"`
	Notes        string            `json:"notes"`
	CreatedAt    time.Time         `json:"createdAt"`
	CreatedBy    string            `json:"createdBy"`
}
