package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Journal is the DB row shape for the journals table.
type Journal struct {
	JournalID          string          `db:"journal_id"`
	CompanyID          string          `db:"company_id"`
	EntryNumber        string          `db:"entry_number"`
	JournalDate        time.Time       `db:"journal_date"`
	Description        string          `db:"description"`
	CurrencyCode       string          `db:"currency_code"`
	Status             string          `db:"status"`
	Amount             decimal.Decimal `db:"amount"`
	OriginalJournalID  *string         `db:"original_journal_id"`  // Nullable
	ReversingJournalID *string         `db:"reversing_journal_id"` // Nullable
	AuditFields
}
