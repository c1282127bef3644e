package repositories

import (
	"context"
	"time"

	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// JournalReader defines read operations for journal data
type JournalReader interface {
	// FindJournalByID retrieves a specific journal by its unique identifier.
	FindJournalByID(ctx context.Context, journalID string) (*domain.Journal, error)

	// ListJournalsByCompany retrieves a paginated list of journals for a given company using token-based pagination.
	// It returns the journals, a token for the next page, and an error.
	ListJournalsByCompany(ctx context.Context, companyID string, limit int, nextToken *string, includeReversals bool) ([]domain.Journal, *string, error)
}

// JournalWriter defines write operations for journal data
type JournalWriter interface {
	// NextEntryNumber allocates the next human-readable entry number for a
	// company (e.g. JE-000042). Callers are the single logical writer per
	// company, so allocation ahead of SaveJournal is safe.
	NextEntryNumber(ctx context.Context, companyID string) (string, error)

	// SaveJournal persists a journal and its transactions and applies the
	// per-account balance deltas, all within one database transaction.
	// This is the only write path that touches account balances.
	SaveJournal(ctx context.Context, journal domain.Journal, transactions []domain.Transaction, balanceChanges map[string]decimal.Decimal) error

	// UpdateJournalStatusAndLinks updates the status and reversal linkage (original/reversing IDs) of a journal.
	UpdateJournalStatusAndLinks(ctx context.Context, journalID string, status domain.JournalStatus, reversingJournalID *string, originalJournalID *string, updatedByUserID string, updatedAt time.Time) error
}

// TransactionReader defines read operations for transaction data
type TransactionReader interface {
	// FindTransactionsByJournalID retrieves all transactions associated with a single journal ID.
	FindTransactionsByJournalID(ctx context.Context, journalID string) ([]domain.Transaction, error)

	// FindTransactionsByJournalIDs retrieves transactions for multiple journal IDs, grouped by journal ID.
	FindTransactionsByJournalIDs(ctx context.Context, journalIDs []string) (map[string][]domain.Transaction, error)

	// ListTransactionsByAccountID retrieves a paginated list of transactions for a specific account using token-based pagination.
	ListTransactionsByAccountID(ctx context.Context, companyID, accountID string, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces
// This is a facade for clients that need access to all operations
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	TransactionReader
}

// JournalRepositoryWithTx extends JournalRepositoryFacade with transaction capabilities
type JournalRepositoryWithTx interface {
	JournalRepositoryFacade
	TransactionManager
}
