package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/makznkaljaafari/makhzan_ledger/internal/core/ports/repositories"
)

// NewRepositoryProvider wires all pgsql repositories over one shared pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool, accountRepo)
	documentRepo := newPgxDocumentRepository(dbPool)
	partyRepo := newPgxPartyRepository(dbPool)
	inventoryRepo := newPgxInventoryRepository(dbPool)
	companyRepo := newPgxCompanyRepository(dbPool)
	currencyRepo := newPgxCurrencyRepository(dbPool)
	exchangeRateRepo := newPgxExchangeRateRepository(dbPool)
	reportingRepo := newReportingRepository(dbPool)

	return portsrepo.RepositoryProvider{
		AccountRepo:      accountRepo,
		JournalRepo:      journalRepo,
		DocumentRepo:     documentRepo,
		PartyRepo:        partyRepo,
		InventoryRepo:    inventoryRepo,
		CompanyRepo:      companyRepo,
		CurrencyRepo:     currencyRepo,
		ExchangeRateRepo: exchangeRateRepo,
		ReportingRepo:    reportingRepo,
	}
}
