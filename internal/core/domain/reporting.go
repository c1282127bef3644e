package domain

import "github.com/shopspring/decimal"

// TrialBalanceRow is one account line in a trial balance: the account's
// running balance presented on its natural side.
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`  // Nonzero for debit-side balances
	Credit      decimal.Decimal `json:"credit"` // Nonzero for credit-side balances
}

// TrialBalance is the full report. For a consistent ledger TotalDebit equals
// TotalCredit after every posting.
type TrialBalance struct {
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
}
