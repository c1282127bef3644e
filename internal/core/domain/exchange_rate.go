package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is a stored snapshot: units of the company base currency per
// one unit of the foreign currency. Documents copy the applicable rate at
// creation time; updating a stored rate never touches existing documents.
type ExchangeRate struct {
	ExchangeRateID   string          `json:"exchangeRateID"` // Primary Key (UUID)
	CompanyID        string          `json:"companyID"`
	FromCurrencyCode string          `json:"fromCurrencyCode"` // Foreign currency
	ToCurrencyCode   string          `json:"toCurrencyCode"`   // Base currency
	Rate             decimal.Decimal `json:"rate"`             // Must be > 0
	DateEffective    time.Time       `json:"dateEffective"`
	AuditFields
}
