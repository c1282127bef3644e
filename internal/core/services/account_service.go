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

// accountService provides chart-of-accounts operations. Balances are read
// through here but never written: only the journal posting path moves them.
type accountService struct {
	accountRepo portsrepo.AccountRepositoryFacade
	companySvc  portssvc.CompanyAuthorizerSvc
}

// NewAccountService creates a new AccountService.
func NewAccountService(ar portsrepo.AccountRepositoryFacade, companySvc portssvc.CompanyAuthorizerSvc) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: ar,
		companySvc:  companySvc,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount persists a new account with a zero opening balance.
func (s *accountService) CreateAccount(ctx context.Context, companyID string, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleMember); err != nil {
		logger.Warn("Authorization failed for CreateAccount", slog.String("user_id", userID), slog.String("company_id", companyID), slog.String("error", err.Error()))
		return nil, err
	}

	// Validate the parent account, when given, belongs to the same company.
	parentID := ""
	if req.ParentAccountID != nil && *req.ParentAccountID != "" {
		parent, err := s.accountRepo.FindAccountByID(ctx, *req.ParentAccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent account %s not found", apperrors.ErrValidation, *req.ParentAccountID)
			}
			return nil, fmt.Errorf("failed to validate parent account: %w", err)
		}
		if parent.CompanyID != companyID {
			return nil, fmt.Errorf("%w: parent account %s not found", apperrors.ErrValidation, *req.ParentAccountID)
		}
		parentID = *req.ParentAccountID
	}

	now := time.Now()
	account := domain.Account{
		AccountID:       uuid.NewString(),
		CompanyID:       companyID,
		Name:            req.Name,
		AccountType:     req.AccountType,
		ParentAccountID: parentID,
		Description:     req.Description,
		IsActive:        true,
		Balance:         decimal.Zero,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save account in repository", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	logger.Info("Account created successfully", slog.String("account_id", account.AccountID), slog.String("company_id", companyID))
	return &account, nil
}

// GetAccountByID retrieves a specific account scoped to the company.
func (s *accountService) GetAccountByID(ctx context.Context, companyID string, accountID string, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account by ID", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return nil, err
	}

	// Obscure existence of accounts in other companies.
	if account.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}

	return account, nil
}

// GetAccountByIDs retrieves multiple accounts, all scoped to the company.
func (s *accountService) GetAccountByIDs(ctx context.Context, companyID string, accountIDs []string, userID string) (map[string]domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	accounts, err := s.accountRepo.FindAccountsByIDs(ctx, accountIDs)
	if err != nil {
		logger.Error("Failed to find accounts by IDs", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	for id, acc := range accounts {
		if acc.CompanyID != companyID {
			delete(accounts, id)
		}
	}

	return accounts, nil
}

// ListAccounts retrieves a paginated list of accounts for a company.
func (s *accountService) ListAccounts(ctx context.Context, companyID string, userID string, limit int, offset int) ([]domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	accounts, err := s.accountRepo.ListAccounts(ctx, companyID, limit, offset)
	if err != nil {
		logger.Error("Failed to list accounts from repository", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	if accounts == nil {
		accounts = []domain.Account{}
	}
	return accounts, nil
}

// UpdateAccount updates an account's descriptive fields.
func (s *accountService) UpdateAccount(ctx context.Context, companyID string, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.GetAccountByID(ctx, companyID, accountID, userID)
	if err != nil {
		return nil, err
	}

	if err := s.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		account.Name = *req.Name
		updated = true
	}
	if req.Description != nil {
		account.Description = *req.Description
		updated = true
	}
	if !updated {
		return account, nil
	}

	now := time.Now()
	account.LastUpdatedAt = now
	account.LastUpdatedBy = userID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to update account in repository", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	logger.Info("Account updated successfully", slog.String("account_id", accountID))
	return account, nil
}

// DeactivateAccount marks an account inactive. Its balance history stays
// intact; the account just stops accepting new journal lines.
func (s *accountService) DeactivateAccount(ctx context.Context, companyID string, accountID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.GetAccountByID(ctx, companyID, accountID, userID)
	if err != nil {
		return err
	}

	if err := s.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleAdmin); err != nil {
		return err
	}

	if !account.IsActive {
		return nil // Already inactive, nothing to do
	}

	now := time.Now()
	if err := s.accountRepo.DeactivateAccount(ctx, accountID, userID, now); err != nil {
		logger.Error("Failed to deactivate account in repository", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return fmt.Errorf("failed to deactivate account: %w", err)
	}

	logger.Info("Account deactivated", slog.String("account_id", accountID), slog.String("company_id", companyID))
	return nil
}
