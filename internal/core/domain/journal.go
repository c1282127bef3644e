package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Posted   JournalStatus = "POSTED"
	Reversed JournalStatus = "REVERSED"
)

// Journal represents a single, balanced financial event composed of multiple
// transactions. Journals are immutable once posted; the only state change is
// reversal, which links a new mirror journal and flips Status to REVERSED.
type Journal struct {
	JournalID    string        `json:"journalID"`    // Primary Key (UUID)
	CompanyID    string        `json:"companyID"`    // FK -> companies.company_id (Not Null)
	EntryNumber  string        `json:"entryNumber"`  // Human-readable, unique per company (e.g. JE-000042)
	JournalDate  time.Time     `json:"journalDate"`  // Date the event occurred
	Description  string        `json:"description"`  // Nullable user description
	CurrencyCode string        `json:"currencyCode"` // Company base currency (Not Null)
	Status       JournalStatus `json:"status"`       // Default: Posted
	// Amount is the economic value of the journal: the sum of its debit side.
	Amount decimal.Decimal `json:"amount"`

	// Reversal linkage.
	OriginalJournalID  *string `json:"originalJournalID,omitempty"`  // Set on a reversing journal
	ReversingJournalID *string `json:"reversingJournalID,omitempty"` // Set on a reversed journal

	Transactions []Transaction `json:"transactions,omitempty"` // Loaded on demand
	AuditFields
}
