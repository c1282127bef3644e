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
	"github.com/makznkaljaafari/makhzan_ledger/internal/utils/accounting"
)

var (
	ErrJournalMinEntries  = errors.New("journal must have at least two transaction entries")
	ErrJournalMinAccounts = errors.New("journal must affect at least two different accounts")
	ErrDescriptionMissing = errors.New("journal description is required")
)

// journalService provides core journal and transaction operations. All
// account balance movement in the system funnels through PostJournal.
type journalService struct {
	accountSvc  portssvc.AccountSvcFacade
	journalRepo portsrepo.JournalRepositoryWithTx
	companySvc  portssvc.CompanySvcFacade
}

// NewJournalService creates a new JournalService.
func NewJournalService(journalRepo portsrepo.JournalRepositoryWithTx, accountSvc portssvc.AccountSvcFacade, companySvc portssvc.CompanySvcFacade) portssvc.JournalSvcFacade {
	return &journalService{
		accountSvc:  accountSvc,
		journalRepo: journalRepo,
		companySvc:  companySvc,
	}
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// validateJournalBalance checks that every amount is positive and that the
// debit and credit sides agree to within the monetary comparison tolerance.
func (s *journalService) validateJournalBalance(transactions []domain.Transaction) error {
	if len(transactions) < 2 {
		return ErrJournalMinEntries
	}

	debitsSum := decimal.Zero
	creditsSum := decimal.Zero

	for _, txn := range transactions {
		if txn.Amount.LessThanOrEqual(decimal.Zero) {
			return fmt.Errorf("%w: transaction amount must be positive for account %s", apperrors.ErrValidation, txn.AccountID)
		}
		if txn.TransactionType == domain.Debit {
			debitsSum = debitsSum.Add(txn.Amount)
		} else {
			creditsSum = creditsSum.Add(txn.Amount)
		}
	}

	if !accounting.WithinEpsilon(debitsSum, creditsSum) {
		return fmt.Errorf("%w: debits sum is %s and credits sum is %s",
			apperrors.ErrUnbalancedEntry, debitsSum.String(), creditsSum.String())
	}

	return nil
}

// calculateJournalAmount computes the economic value of a journal: the sum
// of its debit side, which equals the credit side for a balanced journal.
func (s *journalService) calculateJournalAmount(transactions []domain.Transaction) decimal.Decimal {
	totalDebits := decimal.Zero
	for _, txn := range transactions {
		if txn.TransactionType == domain.Debit {
			totalDebits = totalDebits.Add(txn.Amount)
		}
	}
	return totalDebits
}

// buildBalanceChanges folds the transactions into per-account signed deltas
// under the natural-sign convention.
func (s *journalService) buildBalanceChanges(transactions []domain.Transaction, accountTypes map[string]domain.AccountType) (map[string]decimal.Decimal, error) {
	balanceChanges := make(map[string]decimal.Decimal)
	for _, txn := range transactions {
		signedAmount, err := accounting.CalculateSignedAmount(txn, accountTypes[txn.AccountID])
		if err != nil {
			return nil, fmt.Errorf("internal error calculating balance changes: %w", err)
		}
		balanceChanges[txn.AccountID] = balanceChanges[txn.AccountID].Add(signedAmount)
	}
	return balanceChanges, nil
}

// PostJournal validates a balanced entry and atomically appends it, updating
// every referenced account's running balance.
func (s *journalService) PostJournal(ctx context.Context, companyID string, req dto.PostJournalRequest, creatorUserID string) (*domain.Journal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, creatorUserID, companyID, domain.RoleMember); err != nil {
		logger.Warn("Authorization failed for PostJournal", slog.String("user_id", creatorUserID), slog.String("company_id", companyID), slog.String("error", err.Error()))
		return nil, err
	}

	company, err := s.companySvc.FindCompanyByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company: %w", err)
	}

	if len(req.Transactions) < 2 {
		return nil, ErrJournalMinEntries
	}

	// Check that transactions involve at least 2 different accounts
	accountSet := make(map[string]bool)
	for _, txn := range req.Transactions {
		accountSet[txn.AccountID] = true
	}
	if len(accountSet) < 2 {
		return nil, ErrJournalMinAccounts
	}

	if req.Description == "" {
		return nil, ErrDescriptionMissing
	}

	now := time.Now().UTC()
	journalID := uuid.NewString()

	domainTransactions := make([]domain.Transaction, len(req.Transactions))
	accountIDs := make([]string, 0, len(req.Transactions))
	for i, txnReq := range req.Transactions {
		if txnReq.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: transaction amount must be positive for account %s", apperrors.ErrValidation, txnReq.AccountID)
		}

		domainTransactions[i] = domain.Transaction{
			TransactionID:   uuid.NewString(),
			JournalID:       journalID,
			AccountID:       txnReq.AccountID,
			Amount:          txnReq.Amount,
			TransactionType: txnReq.TransactionType,
			Notes:           txnReq.Notes,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     creatorUserID,
				LastUpdatedAt: now,
				LastUpdatedBy: creatorUserID,
			},
			// RunningBalance is calculated and set by the repository
		}
		accountIDs = append(accountIDs, txnReq.AccountID)
	}

	if err := s.validateJournalBalance(domainTransactions); err != nil {
		return nil, err
	}

	// Every referenced account must exist in this company and be active.
	uniqueAccountIDs := uniqueStrings(accountIDs)
	accountsMap, err := s.accountSvc.GetAccountByIDs(ctx, companyID, uniqueAccountIDs, creatorUserID)
	if err != nil {
		logger.Error("Failed to fetch accounts for journal posting", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}

	accountTypes := make(map[string]domain.AccountType)
	for _, id := range uniqueAccountIDs {
		acc, found := accountsMap[id]
		if !found {
			return nil, fmt.Errorf("%w: ID %s", apperrors.ErrUnknownAccount, id)
		}
		if !acc.IsActive {
			return nil, fmt.Errorf("%w: account %s is inactive", apperrors.ErrValidation, id)
		}
		accountTypes[id] = acc.AccountType
	}

	balanceChanges, err := s.buildBalanceChanges(domainTransactions, accountTypes)
	if err != nil {
		logger.Error("Error calculating balance changes", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		return nil, err
	}

	entryNumber, err := s.journalRepo.NextEntryNumber(ctx, companyID)
	if err != nil {
		logger.Error("Failed to allocate journal entry number", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to allocate entry number: %w", err)
	}

	domainJournal := domain.Journal{
		JournalID:    journalID,
		CompanyID:    companyID,
		EntryNumber:  entryNumber,
		JournalDate:  req.Date,
		Description:  req.Description,
		CurrencyCode: company.BaseCurrencyCode,
		Status:       domain.Posted,
		Amount:       s.calculateJournalAmount(domainTransactions),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	// SaveJournal persists the journal, its lines and the balance deltas in
	// one database transaction.
	err = s.journalRepo.SaveJournal(ctx, domainJournal, domainTransactions, balanceChanges)
	if err != nil {
		logger.Error("Failed to save journal", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to save journal: %w", err)
	}

	logger.Info("Journal posted successfully", slog.String("journal_id", domainJournal.JournalID), slog.String("entry_number", entryNumber), slog.String("company_id", companyID))
	domainJournal.Transactions = nil
	return &domainJournal, nil
}

// GetJournalByID retrieves a specific journal entry with its transactions.
func (s *journalService) GetJournalByID(ctx context.Context, companyID string, journalID string, requestingUserID string) (*domain.Journal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, requestingUserID, companyID, domain.RoleReadOnly); err != nil {
		logger.Warn("Authorization failed for GetJournalByID", slog.String("user_id", requestingUserID), slog.String("company_id", companyID), slog.String("journal_id", journalID), slog.String("error", err.Error()))
		return nil, err
	}

	journal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find journal by ID", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		}
		return nil, fmt.Errorf("failed to find journal by ID %s: %w", journalID, err)
	}

	// Obscure existence of journals in other companies.
	if journal.CompanyID != companyID {
		logger.Warn("Journal found but belongs to different company", slog.String("journal_id", journalID), slog.String("journal_company", journal.CompanyID), slog.String("requested_company", companyID))
		return nil, apperrors.ErrNotFound
	}

	transactions, err := s.journalRepo.FindTransactionsByJournalID(ctx, journalID)
	if err != nil {
		logger.Error("Failed to fetch transactions for journal", slog.String("error", err.Error()), slog.String("journal_id", journalID))
		return nil, fmt.Errorf("failed to retrieve transactions for journal %s: %w", journalID, apperrors.ErrInternal)
	}
	journal.Transactions = transactions

	logger.Debug("Journal and transactions retrieved successfully", slog.String("journal_id", journalID), slog.Int("transaction_count", len(transactions)))
	return journal, nil
}

// ListJournals retrieves a paginated list of journals for a company.
func (j *journalService) ListJournals(ctx context.Context, companyID string, userID string, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := j.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		logger.Warn("Authorization failed for ListJournals", "error", err)
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	journals, nextToken, err := j.journalRepo.ListJournalsByCompany(ctx, companyID, limit, params.NextToken, params.IncludeReversals)
	if err != nil {
		logger.Error("Failed to list journals from repository", "error", err)
		return nil, fmt.Errorf("failed to retrieve journals: %w", err)
	}

	journalResponses := make([]dto.JournalResponse, len(journals))
	for i, journal := range journals {
		journal.Transactions = nil
		journalResponses[i] = dto.ToJournalResponse(&journal)
	}

	resp := &dto.ListJournalsResponse{
		Journals:  journalResponses,
		NextToken: nextToken,
	}

	logger.Info("Journals listed successfully", "count", len(journals))
	return resp, nil
}

// ListTransactionsByAccount retrieves transactions for a specific account within a company.
func (j *journalService) ListTransactionsByAccount(ctx context.Context, companyID string, accountID string, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := j.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		logger.Warn("Authorization failed for ListTransactionsByAccount", "error", err)
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	transactions, nextToken, err := j.journalRepo.ListTransactionsByAccountID(ctx, companyID, accountID, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list transactions by account from repository", "error", err)
		return nil, fmt.Errorf("failed to retrieve transactions: %w", err)
	}

	resp := &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(transactions),
		NextToken:    nextToken,
	}

	logger.Info("Transactions listed successfully for account", "count", len(transactions))
	return resp, nil
}

// validateReverseJournalAction authorizes and loads the journal to reverse.
func (s *journalService) validateReverseJournalAction(ctx context.Context, companyID, journalID, userID string) (*domain.Journal, []domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleMember); err != nil {
		logger.Warn("Authorization failed for ReverseJournal", "error", err)
		return nil, nil, err
	}

	originalJournal, err := s.journalRepo.FindJournalByID(ctx, journalID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Original journal not found for reversal")
			return nil, nil, apperrors.ErrNotFound
		}
		logger.Error("Failed to fetch original journal for reversal", "error", err)
		return nil, nil, fmt.Errorf("failed to retrieve original journal: %w", err)
	}

	if originalJournal.CompanyID != companyID {
		logger.Warn("Attempted to reverse journal from wrong company")
		return nil, nil, apperrors.ErrNotFound
	}
	if originalJournal.Status != domain.Posted {
		logger.Warn("Attempted to reverse non-posted journal", "status", originalJournal.Status)
		return nil, nil, fmt.Errorf("%w: journal status is %s, expected POSTED", apperrors.ErrConflict, originalJournal.Status)
	}
	if originalJournal.OriginalJournalID != nil {
		logger.Warn("Attempted to reverse a journal that is already a reversal", "journalID", journalID)
		return nil, nil, fmt.Errorf("%w: cannot reverse a journal that is already a reversal", apperrors.ErrConflict)
	}

	originalTransactions, err := s.journalRepo.FindTransactionsByJournalID(ctx, journalID)
	if err != nil {
		logger.Error("Failed to fetch original transactions for reversal", "error", err)
		return nil, nil, fmt.Errorf("failed to retrieve original transactions: %w", err)
	}
	return originalJournal, originalTransactions, nil
}

// ReverseJournal creates a new journal entry that mirrors a previously
// posted journal line for line with flipped sides, then marks the original
// REVERSED and links the pair.
func (s *journalService) ReverseJournal(ctx context.Context, companyID string, journalID string, userID string) (*domain.Journal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	originalJournal, originalTransactions, err := s.validateReverseJournalAction(ctx, companyID, journalID, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	newJournalID := uuid.NewString()

	reversingJournal := domain.Journal{
		JournalID:         newJournalID,
		CompanyID:         companyID,
		JournalDate:       originalJournal.JournalDate,
		Description:       fmt.Sprintf("Reversal of %s: %s", originalJournal.EntryNumber, originalJournal.Description),
		CurrencyCode:      originalJournal.CurrencyCode,
		Status:            domain.Posted,
		Amount:            originalJournal.Amount,
		OriginalJournalID: &originalJournal.JournalID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	reversingTransactions := make([]domain.Transaction, len(originalTransactions))
	accIDList := make([]string, 0, len(originalTransactions))
	for i, origTx := range originalTransactions {
		accIDList = append(accIDList, origTx.AccountID)
		newTxType := domain.Credit
		if origTx.TransactionType == domain.Credit {
			newTxType = domain.Debit
		}
		reversingTransactions[i] = domain.Transaction{
			TransactionID:   uuid.NewString(),
			JournalID:       newJournalID,
			AccountID:       origTx.AccountID,
			Amount:          origTx.Amount,
			TransactionType: newTxType,
			Notes:           origTx.Notes,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
	}

	accountsMap, err := s.accountSvc.GetAccountByIDs(ctx, companyID, uniqueStrings(accIDList), userID)
	if err != nil {
		logger.Error("Failed to fetch accounts for reversal balance calculation", "error", err)
		return nil, fmt.Errorf("failed to get account details for reversal: %w", err)
	}

	accountTypes := make(map[string]domain.AccountType)
	for id, acc := range accountsMap {
		accountTypes[id] = acc.AccountType
	}
	balanceChanges, err := s.buildBalanceChanges(reversingTransactions, accountTypes)
	if err != nil {
		logger.Error("Failed to calculate balance changes for reversal", "error", err)
		return nil, err
	}

	entryNumber, err := s.journalRepo.NextEntryNumber(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate entry number: %w", err)
	}
	reversingJournal.EntryNumber = entryNumber

	if err := s.journalRepo.SaveJournal(ctx, reversingJournal, reversingTransactions, balanceChanges); err != nil {
		logger.Error("Failed to save reversing journal entry", "error", err)
		return nil, fmt.Errorf("failed to save reversing journal: %w", err)
	}

	if err := s.journalRepo.UpdateJournalStatusAndLinks(ctx, originalJournal.JournalID, domain.Reversed, &newJournalID, originalJournal.OriginalJournalID, userID, now); err != nil {
		logger.Error("Failed to update original journal status after reversal", "originalJournalID", originalJournal.JournalID, "reversingJournalID", newJournalID, "error", err)
		return nil, fmt.Errorf("failed to update original journal status: %w", err)
	}

	logger.Info("Journal reversed successfully", "reversingJournalID", newJournalID)
	reversingJournal.Transactions = nil
	return &reversingJournal, nil
}

// uniqueStrings returns a slice containing only the unique strings from the input.
func uniqueStrings(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	result := make([]string, 0, len(input))
	for _, str := range input {
		if _, ok := seen[str]; !ok {
			seen[str] = struct{}{}
			result = append(result, str)
		}
	}
	return result
}
