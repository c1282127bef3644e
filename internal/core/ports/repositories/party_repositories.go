package repositories

import (
	"context"
	"time"

	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PartyReader defines read operations for counterparty data
type PartyReader interface {
	// FindPartyByID retrieves a specific party by its unique identifier.
	FindPartyByID(ctx context.Context, partyID string) (*domain.Party, error)

	// ListParties retrieves a paginated list of parties of a given kind for a company.
	ListParties(ctx context.Context, companyID string, kind *domain.PartyKind, limit int, offset int) ([]domain.Party, error)
}

// PartyWriter defines write operations for counterparty data
type PartyWriter interface {
	// SaveParty persists a new party.
	SaveParty(ctx context.Context, party domain.Party) error

	// UpdateParty updates an existing party's details (never its debt).
	UpdateParty(ctx context.Context, party domain.Party) error

	// AdjustTotalDebt adds a signed base-currency delta to the party's
	// aggregate outstanding balance.
	AdjustTotalDebt(ctx context.Context, partyID string, delta decimal.Decimal, userID string, now time.Time) error
}

// PaymentHistoryManager defines operations for a party's append-only payment history
type PaymentHistoryManager interface {
	// SavePaymentRecord appends one history row. Rows are never updated or deleted.
	SavePaymentRecord(ctx context.Context, record domain.PaymentRecord) error

	// ListPaymentRecords retrieves a party's history, newest first.
	ListPaymentRecords(ctx context.Context, companyID, partyID string, limit int, offset int) ([]domain.PaymentRecord, error)
}

// PartyRepositoryFacade combines all party-related repository interfaces
type PartyRepositoryFacade interface {
	PartyReader
	PartyWriter
	PaymentHistoryManager
}

// PartyRepositoryWithTx extends PartyRepositoryFacade with transaction capabilities
type PartyRepositoryWithTx interface {
	PartyRepositoryFacade
	TransactionManager
}
