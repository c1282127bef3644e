package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account represents a financial account within the chart of accounts.
// Balance is the running base-currency balance under the natural-sign
// convention (Asset/Expense increase on debit, the rest on credit).
// It is written only by the journal repository while saving a journal;
// no service mutates it directly.
type Account struct {
	AccountID       string      `json:"accountID"`       // Primary Key (UUID)
	CompanyID       string      `json:"companyID"`       // FK -> companies.company_id (NON-NULL)
	Name            string      `json:"name"`            // User-defined name
	AccountType     AccountType `json:"accountType"`     // ASSET, LIABILITY, etc.
	ParentAccountID string      `json:"parentAccountID"` // Nullable FK -> accounts.account_id (self-referencing)
	Description     string      `json:"description"`     // Nullable user description
	IsActive        bool        `json:"isActive"`        // Soft delete or status flag
	AuditFields
	Balance decimal.Decimal `json:"balance"` // Running balance, base currency
}

// NaturalSign returns +1 for debit-natural account types and -1 for
// credit-natural ones. The signed sum of all balances multiplied by their
// natural sign is zero for a consistent ledger.
func (t AccountType) NaturalSign() int {
	switch t {
	case Asset, Expense:
		return 1
	default:
		return -1
	}
}
