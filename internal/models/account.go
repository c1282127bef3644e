package models

import (
	"github.com/shopspring/decimal"
)

// Account is the DB row shape for the accounts table.
// ParentAccountID maps to a nullable self-referencing FK.
type Account struct {
	AccountID       string          `db:"account_id"`
	CompanyID       string          `db:"company_id"`
	Name            string          `db:"name"`
	AccountType     string          `db:"account_type"`
	ParentAccountID string          `db:"parent_account_id"` // Nullable
	Description     string          `db:"description"`
	IsActive        bool            `db:"is_active"`
	AuditFields
	Balance decimal.Decimal `db:"balance"`
}
