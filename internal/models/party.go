package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Party is the DB row shape for the parties table.
type Party struct {
	PartyID   string          `db:"party_id"`
	CompanyID string          `db:"company_id"`
	Name      string          `db:"name"`
	Kind      string          `db:"kind"`
	Phone     string          `db:"phone"`
	Notes     string          `db:"notes"`
	TotalDebt decimal.Decimal `db:"total_debt"`
	IsActive  bool            `db:"is_active"`
	AuditFields
}

// PaymentRecord is the DB row shape for the append-only payment_records table.
type PaymentRecord struct {
	RecordID     string          `db:"record_id"`
	CompanyID    string          `db:"company_id"`
	PartyID      string          `db:"party_id"`
	RecordDate   time.Time       `db:"record_date"`
	Amount       decimal.Decimal `db:"amount"`
	RecordType   string          `db:"record_type"`
	RefID        string          `db:"ref_id"`
	Method       string          `db:"method"`
	CurrencyCode string          `db:"currency_code"`
	ExchangeRate decimal.Decimal `db:"exchange_rate"`
	Notes        string          `db:"notes"`
	CreatedAt    time.Time       `db:"created_at"`
	CreatedBy    string          `db:"created_by"`
}
