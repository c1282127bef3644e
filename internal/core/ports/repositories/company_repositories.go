package repositories

import (
	"context"

	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
)

// CompanyReader defines read operations for company data
type CompanyReader interface {
	// FindCompanyByID retrieves a specific company by its ID.
	FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error)

	// ListCompaniesByUserID retrieves all companies a user belongs to.
	ListCompaniesByUserID(ctx context.Context, userID string) ([]domain.Company, error)
}

// CompanyWriter defines write operations for company data
type CompanyWriter interface {
	// SaveCompany persists a new company.
	SaveCompany(ctx context.Context, company domain.Company) error

	// UpdateCompany updates a company's details and posting configuration.
	UpdateCompany(ctx context.Context, company domain.Company) error
}

// CompanyMembershipManager defines operations for managing company memberships
type CompanyMembershipManager interface {
	// AddUserToCompany adds a user to a company with a specific role.
	AddUserToCompany(ctx context.Context, membership domain.UserCompany) error

	// FindUserCompanyRole retrieves the role of a user in a company.
	FindUserCompanyRole(ctx context.Context, userID, companyID string) (*domain.UserCompany, error)
}

// CompanyRepositoryFacade combines all company-related repository interfaces
type CompanyRepositoryFacade interface {
	CompanyReader
	CompanyWriter
	CompanyMembershipManager
}

// CompanyRepositoryWithTx extends CompanyRepositoryFacade with transaction capabilities
type CompanyRepositoryWithTx interface {
	CompanyRepositoryFacade
	TransactionManager
}
