package repositories

import (
	"context"
	"time"

	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DocumentReader defines read operations for business documents
type DocumentReader interface {
	// FindDocumentByID retrieves a specific document by its unique identifier.
	FindDocumentByID(ctx context.Context, documentID string) (*domain.Document, error)

	// ListDocumentsByCompany retrieves a paginated list of documents for a company,
	// optionally filtered by kind, using token-based pagination.
	ListDocumentsByCompany(ctx context.Context, companyID string, kind *domain.DocumentKind, limit int, nextToken *string) ([]domain.Document, *string, error)

	// FindOutstandingByParty retrieves the party's documents of the given
	// kinds that still carry an unpaid balance, ordered by document date
	// ascending (oldest first). This ordering drives FIFO auto-allocation
	// and must stay stable.
	FindOutstandingByParty(ctx context.Context, companyID, partyID string, kinds []domain.DocumentKind) ([]domain.Document, error)
}

// DocumentWriter defines write operations for business documents
type DocumentWriter interface {
	// SaveDocument persists a new document.
	SaveDocument(ctx context.Context, doc domain.Document) error

	// MarkReceived flips a purchase order to RECEIVED.
	MarkReceived(ctx context.Context, documentID string, userID string, now time.Time) error

	// MarkPosted sets isPosted and the journal linkage for a document.
	MarkPosted(ctx context.Context, documentID string, journalID string, userID string, now time.Time) error

	// AddPaidAmount increases a document's paid amount (document currency).
	// The delta is always positive; over-allocation guards live in the
	// allocation service, before any write happens.
	AddPaidAmount(ctx context.Context, documentID string, delta decimal.Decimal, userID string, now time.Time) error
}

// DocumentRepositoryFacade combines all document-related repository interfaces
type DocumentRepositoryFacade interface {
	DocumentReader
	DocumentWriter
}

// DocumentRepositoryWithTx extends DocumentRepositoryFacade with transaction capabilities
type DocumentRepositoryWithTx interface {
	DocumentRepositoryFacade
	TransactionManager
}
