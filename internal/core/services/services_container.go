package services

import (
	portsrepo "github.com/makznkaljaafari/makhzan_ledger/internal/core/ports/repositories"
	portssvc "github.com/makznkaljaafari/makhzan_ledger/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Company service first: it is the authorization authority every other
	// service leans on.
	container.Company = NewCompanyService(repos.CompanyRepo, repos.CurrencyRepo)

	container.Currency = NewCurrencyService(repos.CurrencyRepo)
	container.ExchangeRate = NewExchangeRateService(repos.ExchangeRateRepo, container.Currency, container.Company)

	container.Account = NewAccountService(repos.AccountRepo, container.Company)
	container.Journal = NewJournalService(repos.JournalRepo, container.Account, container.Company)
	container.Valuation = NewValuationService(repos.InventoryRepo, container.Company)
	container.Party = NewPartyService(repos.PartyRepo, container.Company)

	container.Document = NewDocumentService(repos.DocumentRepo, repos.PartyRepo, repos.InventoryRepo, container.Valuation, container.ExchangeRate, container.Company)
	container.Posting = NewPostingService(repos.DocumentRepo, repos.PartyRepo, container.Valuation, container.Journal, container.Company)
	container.Allocation = NewAllocationService(repos.DocumentRepo, repos.PartyRepo, container.Account, container.Journal, container.ExchangeRate, container.Company)

	container.Reporting = NewReportingService(repos.ReportingRepo, container.Company)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.CompanySvcFacade    = (*companyService)(nil)
	_ portssvc.AccountSvcFacade    = (*accountService)(nil)
	_ portssvc.JournalSvcFacade    = (*journalService)(nil)
	_ portssvc.ValuationSvcFacade  = (*valuationService)(nil)
	_ portssvc.DocumentSvcFacade   = (*documentService)(nil)
	_ portssvc.PostingSvcFacade    = (*postingService)(nil)
	_ portssvc.AllocationSvcFacade = (*allocationService)(nil)
)
