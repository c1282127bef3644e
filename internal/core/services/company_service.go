package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/makznkaljaafari/makhzan_ledger/internal/apperrors"
	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
	portsrepo "github.com/makznkaljaafari/makhzan_ledger/internal/core/ports/repositories"
	portssvc "github.com/makznkaljaafari/makhzan_ledger/internal/core/ports/services"
	"github.com/makznkaljaafari/makhzan_ledger/internal/dto"
	"github.com/makznkaljaafari/makhzan_ledger/internal/middleware"
)

// companyService handles business logic related to companies and memberships.
type companyService struct {
	companyRepo  portsrepo.CompanyRepositoryFacade
	currencyRepo portsrepo.CurrencyRepositoryFacade
}

// NewCompanyService creates a new CompanyService.
func NewCompanyService(cr portsrepo.CompanyRepositoryFacade, curr portsrepo.CurrencyRepositoryFacade) portssvc.CompanySvcFacade {
	return &companyService{
		companyRepo:  cr,
		currencyRepo: curr,
	}
}

// Ensure companyService implements the portssvc.CompanySvcFacade interface
var _ portssvc.CompanySvcFacade = (*companyService)(nil)

// CreateCompany creates a new company and makes the creator the initial admin.
func (s *companyService) CreateCompany(ctx context.Context, req dto.CreateCompanyRequest, creatorUserID string) (*domain.Company, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	// Validate that the base currency exists
	_, err := s.currencyRepo.FindCurrencyByCode(ctx, req.BaseCurrencyCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Invalid base currency code provided", slog.String("currency_code", req.BaseCurrencyCode))
			return nil, fmt.Errorf("%w: currency code %s not found", apperrors.ErrValidation, req.BaseCurrencyCode)
		}
		logger.Error("Failed to check currency code existence", slog.String("error", err.Error()), slog.String("currency_code", req.BaseCurrencyCode))
		return nil, fmt.Errorf("failed to validate currency code: %w", err)
	}

	now := time.Now()
	newCompanyID := uuid.NewString()

	company := domain.Company{
		CompanyID:        newCompanyID,
		Name:             req.Name,
		BaseCurrencyCode: req.BaseCurrencyCode,
		VATEnabled:       false,
		VATRate:          decimal.Zero,
		// Oversell is tolerated until the company opts out.
		AllowNegativeStock: true,
		IsActive:           true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.companyRepo.SaveCompany(ctx, company); err != nil {
		logger.Error("Failed to save company in repository", slog.String("error", err.Error()), slog.String("company_name", req.Name))
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	// Add the creator as the initial admin
	membership := domain.UserCompany{
		UserID:    creatorUserID,
		CompanyID: newCompanyID,
		Role:      domain.RoleAdmin,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if err := s.companyRepo.AddUserToCompany(ctx, membership); err != nil {
		logger.Error("Failed to add creator as admin to new company", slog.String("error", err.Error()), slog.String("company_id", newCompanyID), slog.String("user_id", creatorUserID))
		return nil, fmt.Errorf("failed to add creator membership: %w", err)
	}

	logger.Info("Company created successfully", slog.String("company_id", newCompanyID), slog.String("creator_user_id", creatorUserID))
	return &company, nil
}

// UpdateCompanySettings updates the posting configuration of a company.
// Requires ADMIN role.
func (s *companyService) UpdateCompanySettings(ctx context.Context, companyID string, req dto.UpdateCompanySettingsRequest, requestingUserID string) (*domain.Company, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.AuthorizeUserAction(ctx, requestingUserID, companyID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find company for settings update", slog.String("error", err.Error()), slog.String("company_id", companyID))
		}
		return nil, err
	}

	if req.Name != nil {
		company.Name = *req.Name
	}
	if req.VATEnabled != nil {
		company.VATEnabled = *req.VATEnabled
	}
	if req.VATRate != nil {
		if req.VATRate.IsNegative() {
			return nil, fmt.Errorf("%w: VAT rate must not be negative", apperrors.ErrValidation)
		}
		company.VATRate = *req.VATRate
	}
	if req.AllowNegativeStock != nil {
		company.AllowNegativeStock = *req.AllowNegativeStock
	}
	if req.DefaultAccounts != nil {
		company.DefaultAccounts = domain.DefaultAccounts(*req.DefaultAccounts)
	}

	now := time.Now()
	company.LastUpdatedAt = now
	company.LastUpdatedBy = requestingUserID

	if err := s.companyRepo.UpdateCompany(ctx, *company); err != nil {
		logger.Error("Failed to update company settings in repository", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to update company settings: %w", err)
	}

	logger.Info("Company settings updated", slog.String("company_id", companyID), slog.String("updated_by", requestingUserID))
	return company, nil
}

// AddUserToCompany adds a user to a company with a specific role.
func (s *companyService) AddUserToCompany(ctx context.Context, addingUserID, targetUserID, companyID string, role domain.UserCompanyRole) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	// Only admins may manage membership.
	if err := s.AuthorizeUserAction(ctx, addingUserID, companyID, domain.RoleAdmin); err != nil {
		return err
	}

	now := time.Now()
	membership := domain.UserCompany{
		UserID:    targetUserID,
		CompanyID: companyID,
		Role:      role,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     addingUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: addingUserID,
		},
	}

	if err := s.companyRepo.AddUserToCompany(ctx, membership); err != nil {
		logger.Error("Failed to add user to company in repository", slog.String("error", err.Error()), slog.String("target_user_id", targetUserID), slog.String("company_id", companyID))
		return fmt.Errorf("failed to add user %s to company %s: %w", targetUserID, companyID, err)
	}

	logger.Info("User added to company successfully", slog.String("target_user_id", targetUserID), slog.String("company_id", companyID), slog.String("role", string(role)), slog.String("added_by_user_id", addingUserID))
	return nil
}

// ListUserCompanies retrieves the list of companies a given user belongs to.
func (s *companyService) ListUserCompanies(ctx context.Context, userID string) ([]domain.Company, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	companies, err := s.companyRepo.ListCompaniesByUserID(ctx, userID)
	if err != nil {
		logger.Error("Failed to list companies for user from repository", slog.String("error", err.Error()), slog.String("user_id", userID))
		return nil, fmt.Errorf("failed to list companies for user %s: %w", userID, err)
	}

	if companies == nil {
		return []domain.Company{}, nil // Return empty slice, not nil
	}

	logger.Debug("Companies listed successfully for user", slog.String("user_id", userID), slog.Int("count", len(companies)))
	return companies, nil
}

// FindCompanyByID retrieves a company by its ID.
func (s *companyService) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	company, err := s.companyRepo.FindCompanyByID(ctx, companyID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find company by ID in repository", slog.String("error", err.Error()), slog.String("company_id", companyID))
		}
		return nil, err // Propagate error (including NotFound)
	}
	logger.Debug("Company found by ID", slog.String("company_id", companyID))
	return company, nil
}

// AuthorizeUserAction checks if a user has the required role (or higher) within a specific company.
// Returns apperrors.ErrNotFound if user/company doesn't exist or user not member.
// Returns apperrors.ErrForbidden if user is member but lacks the required role.
// Returns nil if authorized.
func (s *companyService) AuthorizeUserAction(ctx context.Context, userID, companyID string, requiredRole domain.UserCompanyRole) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	membership, err := s.companyRepo.FindUserCompanyRole(ctx, userID, companyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Authorization failed: User or company not found, or user not a member", slog.String("user_id", userID), slog.String("company_id", companyID))
			// Return NotFound to avoid revealing company existence if user shouldn't know
			return apperrors.ErrNotFound
		}
		logger.Error("Failed to check user company role in repository", slog.String("error", err.Error()), slog.String("user_id", userID), slog.String("company_id", companyID))
		return fmt.Errorf("failed to check authorization: %w", err)
	}

	if membership.Role.HasRole(requiredRole) {
		return nil
	}

	logger.Warn("Authorization failed: User lacks required role", slog.String("user_id", userID), slog.String("company_id", companyID), slog.String("user_role", string(membership.Role)), slog.String("required_role", string(requiredRole)))
	return apperrors.ErrForbidden
}
