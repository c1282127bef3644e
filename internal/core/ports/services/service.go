package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Company      CompanySvcFacade
	Account      AccountSvcFacade
	Journal      JournalSvcFacade
	Document     DocumentSvcFacade
	Posting      PostingSvcFacade
	Allocation   AllocationSvcFacade
	Valuation    ValuationSvcFacade
	Party        PartySvcFacade
	Currency     CurrencySvcFacade
	ExchangeRate ExchangeRateSvcFacade
	Reporting    ReportingSvcFacade
}
