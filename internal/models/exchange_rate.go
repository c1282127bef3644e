package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is the DB row shape for the exchange_rates table.
type ExchangeRate struct {
	ExchangeRateID   string          `db:"exchange_rate_id"`
	CompanyID        string          `db:"company_id"`
	FromCurrencyCode string          `db:"from_currency_code"`
	ToCurrencyCode   string          `db:"to_currency_code"`
	Rate             decimal.Decimal `db:"rate"`
	DateEffective    time.Time       `db:"date_effective"`
	AuditFields
}
