package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the DB row shape for the transactions table. JournalDate and
// JournalDescription are populated only by joined ledger queries and have no
// column of their own in this table.
type Transaction struct {
	TransactionID   string          `db:"transaction_id"`
	JournalID       string          `db:"journal_id"`
	AccountID       string          `db:"account_id"`
	Amount          decimal.Decimal `db:"amount"`
	TransactionType string          `db:"transaction_type"`
	Notes           string          `db:"notes"`
	AuditFields
	RunningBalance decimal.Decimal `db:"running_balance"`

	JournalDate        time.Time `db:"journal_date"`
	JournalDescription string    `db:"journal_description"`
}
