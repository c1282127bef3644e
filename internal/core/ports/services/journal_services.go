package services

import (
	"context"

	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
	"github.com/makznkaljaafari/makhzan_ledger/internal/dto"
)

// JournalReaderSvc defines read operations for journal data
type JournalReaderSvc interface {
	// GetJournalByID retrieves a specific journal by its ID, with its transactions.
	GetJournalByID(ctx context.Context, companyID string, journalID string, requestingUserID string) (*domain.Journal, error)

	// ListJournals retrieves a paginated list of journals in a company.
	ListJournals(ctx context.Context, companyID string, userID string, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error)
}

// JournalWriterSvc defines write operations for journal data
type JournalWriterSvc interface {
	// PostJournal validates a balanced entry and atomically appends it,
	// updating every referenced account's running balance. This is the only
	// path through which account balances change.
	PostJournal(ctx context.Context, companyID string, req dto.PostJournalRequest, creatorUserID string) (*domain.Journal, error)

	// ReverseJournal creates a mirror journal for an existing posted journal.
	ReverseJournal(ctx context.Context, companyID string, journalID string, userID string) (*domain.Journal, error)
}

// TransactionReaderSvc defines read operations for transaction data
type TransactionReaderSvc interface {
	// ListTransactionsByAccount retrieves transactions for a specific account.
	ListTransactionsByAccount(ctx context.Context, companyID string, accountID string, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}

// JournalSvcFacade combines all journal-related service interfaces
// This is a facade for clients that need access to all operations
type JournalSvcFacade interface {
	JournalReaderSvc
	JournalWriterSvc
	TransactionReaderSvc
}
