package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultAccounts is the JSON shape of companies.default_accounts. Empty IDs
// mean the account is unconfigured.
type DefaultAccounts struct {
	AccountsReceivable string `json:"accountsReceivable"`
	AccountsPayable    string `json:"accountsPayable"`
	Sales              string `json:"sales"`
	SalesReturn        string `json:"salesReturn"`
	COGS               string `json:"cogs"`
	Inventory          string `json:"inventory"`
	VATPayable         string `json:"vatPayable"`
	VATReceivable      string `json:"vatReceivable"`
}

// Company is the DB row shape for the companies table. DefaultAccounts is
// stored as a JSONB object.
type Company struct {
	CompanyID          string          `db:"company_id"`
	Name               string          `db:"name"`
	BaseCurrencyCode   string          `db:"base_currency_code"`
	VATEnabled         bool            `db:"vat_enabled"`
	VATRate            decimal.Decimal `db:"vat_rate"`
	DefaultAccounts    DefaultAccounts `db:"default_accounts"`
	AllowNegativeStock bool            `db:"allow_negative_stock"`
	IsActive           bool            `db:"is_active"`
	AuditFields
}

// UserCompany is the DB row shape for the user_companies membership table.
type UserCompany struct {
	UserID    string    `db:"user_id"`
	CompanyID string    `db:"company_id"`
	Role      string    `db:"role"`
	JoinedAt  time.Time `db:"joined_at"`
	AuditFields
}
