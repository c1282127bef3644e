package domain

import "github.com/shopspring/decimal"

// TransactionType indicates whether a transaction line is a Debit or a Credit.
type TransactionType string

const (
	Debit  TransactionType = "DEBIT"
	Credit TransactionType = "CREDIT"
)

// Transaction represents a single line item within a Journal, affecting one
// account. Amount is always positive; the debit/credit side is carried by
// TransactionType, so exactly one side of the line is ever nonzero.
type Transaction struct {
	TransactionID   string          `json:"transactionID"`   // Primary Key (UUID)
	JournalID       string          `json:"journalID"`       // FK -> Journal.journalID (Not Null)
	AccountID       string          `json:"accountID"`       // FK -> Account.accountID (Not Null)
	Amount          decimal.Decimal `json:"amount"`          // Positive value, base currency
	TransactionType TransactionType `json:"transactionType"` // DEBIT or CREDIT (Not Null)
	Notes           string          `json:"notes"`           // Nullable
	AuditFields
	RunningBalance decimal.Decimal `json:"runningBalance"` // Account balance after this transaction
}
