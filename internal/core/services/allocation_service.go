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

// allocationService applies payments against a party's outstanding
// documents. A payment is transient: it is consumed entirely within one
// ApplyPayment call and leaves behind only document paid amounts, the
// party's debt, a history row and, optionally, a cash journal.
type allocationService struct {
	documentRepo portsrepo.DocumentRepositoryFacade
	partyRepo    portsrepo.PartyRepositoryFacade
	accountSvc   portssvc.AccountSvcFacade
	journalSvc   portssvc.JournalSvcFacade
	rateSvc      portssvc.ExchangeRateSvcFacade
	companySvc   portssvc.CompanySvcFacade
}

// NewAllocationService creates a new AllocationService.
func NewAllocationService(
	dr portsrepo.DocumentRepositoryFacade,
	pr portsrepo.PartyRepositoryFacade,
	accountSvc portssvc.AccountSvcFacade,
	journalSvc portssvc.JournalSvcFacade,
	rateSvc portssvc.ExchangeRateSvcFacade,
	companySvc portssvc.CompanySvcFacade,
) portssvc.AllocationSvcFacade {
	return &allocationService{
		documentRepo: dr,
		partyRepo:    pr,
		accountSvc:   accountSvc,
		journalSvc:   journalSvc,
		rateSvc:      rateSvc,
		companySvc:   companySvc,
	}
}

var _ portssvc.AllocationSvcFacade = (*allocationService)(nil)

// outstandingKinds returns the document kinds a payment settles for the
// given party kind.
func outstandingKinds(kind domain.PartyKind) []domain.DocumentKind {
	if kind == domain.Customer {
		return []domain.DocumentKind{domain.SaleDoc}
	}
	return []domain.DocumentKind{domain.PurchaseOrderDoc}
}

// fifoAllocate walks the outstanding documents oldest first, giving each its
// remaining balance until the payment runs out. Amounts are base currency.
func fifoAllocate(docs []domain.Document, amountBase decimal.Decimal) []dto.AllocationResponse {
	allocations := make([]dto.AllocationResponse, 0, len(docs))
	left := amountBase
	for _, doc := range docs {
		if left.LessThanOrEqual(accounting.Epsilon) {
			break
		}
		remaining := doc.RemainingBase()
		if remaining.LessThanOrEqual(accounting.Epsilon) {
			continue
		}
		take := decimal.Min(left, remaining)
		amountDoc, err := accounting.FromBase(take, doc.ExchangeRate)
		if err != nil {
			continue // Rate was validated at document creation; skip defensively impossible rows
		}
		allocations = append(allocations, dto.AllocationResponse{
			DocumentID: doc.DocumentID,
			Amount:     take,
			AmountDoc:  amountDoc,
		})
		left = left.Sub(take)
	}
	return allocations
}

// resolvePaymentAmount converts the request amount into base currency and
// returns the rate and currency actually used.
func (s *allocationService) resolvePaymentAmount(ctx context.Context, company *domain.Company, currencyCode string, amount decimal.Decimal, userID string) (decimal.Decimal, decimal.Decimal, string, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, decimal.Zero, "", fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}
	if currencyCode == "" {
		currencyCode = company.BaseCurrencyCode
	}
	rate, err := s.rateSvc.ResolveRate(ctx, company.CompanyID, currencyCode, userID)
	if err != nil {
		return decimal.Zero, decimal.Zero, "", err
	}
	amountBase, err := accounting.ToBase(amount, rate)
	if err != nil {
		return decimal.Zero, decimal.Zero, "", err
	}
	return accounting.RoundCurrency(amountBase), rate, currencyCode, nil
}

// loadCompanyParty loads and scopes the party the payment targets.
func (s *allocationService) loadCompanyParty(ctx context.Context, companyID, partyID string) (*domain.Party, error) {
	party, err := s.partyRepo.FindPartyByID(ctx, partyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: party %s not found", apperrors.ErrValidation, partyID)
		}
		return nil, fmt.Errorf("failed to load party: %w", err)
	}
	if party.CompanyID != companyID {
		return nil, fmt.Errorf("%w: party %s not found", apperrors.ErrValidation, partyID)
	}
	return party, nil
}

// SuggestAllocations runs the FIFO computation without mutating anything.
func (s *allocationService) SuggestAllocations(ctx context.Context, companyID string, req dto.SuggestAllocationsRequest, userID string) ([]dto.AllocationResponse, error) {
	if err := s.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	company, err := s.companySvc.FindCompanyByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company: %w", err)
	}
	party, err := s.loadCompanyParty(ctx, companyID, req.PartyID)
	if err != nil {
		return nil, err
	}
	amountBase, _, _, err := s.resolvePaymentAmount(ctx, company, req.CurrencyCode, req.Amount, userID)
	if err != nil {
		return nil, err
	}

	docs, err := s.documentRepo.FindOutstandingByParty(ctx, companyID, party.PartyID, outstandingKinds(party.Kind))
	if err != nil {
		return nil, fmt.Errorf("failed to load outstanding documents: %w", err)
	}
	return fifoAllocate(docs, amountBase), nil
}

// ApplyPayment applies a payment across a party's outstanding documents.
// Explicit allocations are validated against each document's remaining
// balance; otherwise AutoApply selects documents oldest first. The party's
// debt drops by the full payment, a PAYMENT history row is appended, and a
// cash journal is booked when a source account is given.
func (s *allocationService) ApplyPayment(ctx context.Context, companyID string, req dto.ApplyPaymentRequest, userID string) (*dto.PaymentResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleMember); err != nil {
		logger.Warn("Authorization failed for ApplyPayment", slog.String("user_id", userID), slog.String("company_id", companyID), slog.String("error", err.Error()))
		return nil, err
	}

	company, err := s.companySvc.FindCompanyByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company: %w", err)
	}
	party, err := s.loadCompanyParty(ctx, companyID, req.PartyID)
	if err != nil {
		return nil, err
	}
	amountBase, rate, currencyCode, err := s.resolvePaymentAmount(ctx, company, req.CurrencyCode, req.Amount, userID)
	if err != nil {
		return nil, err
	}

	var allocations []dto.AllocationResponse
	if len(req.Allocations) > 0 {
		allocations, err = s.validateExplicitAllocations(ctx, companyID, party, req.Allocations, amountBase)
		if err != nil {
			return nil, err
		}
	} else if req.AutoApply {
		docs, err := s.documentRepo.FindOutstandingByParty(ctx, companyID, party.PartyID, outstandingKinds(party.Kind))
		if err != nil {
			return nil, fmt.Errorf("failed to load outstanding documents: %w", err)
		}
		allocations = fifoAllocate(docs, amountBase)
	} else {
		return nil, fmt.Errorf("%w: either allocations or autoApply is required", apperrors.ErrValidation)
	}

	// The cash journal is validated up front: once the allocation loop below
	// starts writing, a rejected journal would leave a half-applied payment.
	var cashJournal *dto.PostJournalRequest
	if req.FromAccountID != nil && *req.FromAccountID != "" {
		cashJournal, err = s.prepareCashJournal(ctx, company, party, *req.FromAccountID, amountBase, req.Date, userID)
		if err != nil {
			return nil, err
		}
	}

	now := time.Now()
	allocatedTotal := decimal.Zero
	for _, alloc := range allocations {
		// Paid amounts advance in each document's own currency.
		if err := s.documentRepo.AddPaidAmount(ctx, alloc.DocumentID, alloc.AmountDoc, userID, now); err != nil {
			logger.Error("Failed to add paid amount to document", slog.String("error", err.Error()), slog.String("document_id", alloc.DocumentID))
			return nil, fmt.Errorf("failed to record allocation on document %s: %w", alloc.DocumentID, err)
		}
		allocatedTotal = allocatedTotal.Add(alloc.Amount)
	}

	if err := s.partyRepo.AdjustTotalDebt(ctx, party.PartyID, amountBase.Neg(), userID, now); err != nil {
		logger.Error("Failed to reduce party debt for payment", slog.String("error", err.Error()), slog.String("party_id", party.PartyID))
		return nil, fmt.Errorf("failed to reduce party debt: %w", err)
	}

	paymentID := uuid.NewString()
	record := domain.PaymentRecord{
		RecordID:     uuid.NewString(),
		CompanyID:    companyID,
		PartyID:      party.PartyID,
		Date:         req.Date,
		Amount:       amountBase,
		Type:         domain.RecordPayment,
		RefID:        paymentID,
		Method:       req.Method,
		CurrencyCode: currencyCode,
		ExchangeRate: rate,
		Notes:        req.Notes,
		CreatedAt:    now,
		CreatedBy:    userID,
	}
	if err := s.partyRepo.SavePaymentRecord(ctx, record); err != nil {
		logger.Error("Failed to append payment history", slog.String("error", err.Error()), slog.String("party_id", party.PartyID))
		return nil, fmt.Errorf("failed to append payment history: %w", err)
	}

	var journalID *string
	if cashJournal != nil {
		journal, err := s.journalSvc.PostJournal(ctx, company.CompanyID, *cashJournal, userID)
		if err != nil {
			logger.Error("Failed to book cash journal for payment", slog.String("error", err.Error()), slog.String("party_id", party.PartyID))
			return nil, fmt.Errorf("failed to book cash journal: %w", err)
		}
		journalID = &journal.JournalID
	}

	resp := &dto.PaymentResponse{
		PartyID:      party.PartyID,
		AmountBase:   amountBase,
		Allocations:  allocations,
		Unapplied:    amountBase.Sub(allocatedTotal),
		NewTotalDebt: party.TotalDebt.Sub(amountBase),
		JournalID:    journalID,
	}

	logger.Info("Payment applied", slog.String("party_id", party.PartyID), slog.String("amount_base", amountBase.String()), slog.Int("allocations", len(allocations)))
	return resp, nil
}

// validateExplicitAllocations checks caller-pinned allocations against the
// documents' remaining balances and the payment total.
func (s *allocationService) validateExplicitAllocations(ctx context.Context, companyID string, party *domain.Party, reqAllocs []dto.AllocationRequest, amountBase decimal.Decimal) ([]dto.AllocationResponse, error) {
	allocations := make([]dto.AllocationResponse, 0, len(reqAllocs))
	total := decimal.Zero
	for _, a := range reqAllocs {
		if a.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: allocation amount must be positive for document %s", apperrors.ErrValidation, a.DocumentID)
		}
		doc, err := s.documentRepo.FindDocumentByID(ctx, a.DocumentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: document %s not found", apperrors.ErrValidation, a.DocumentID)
			}
			return nil, fmt.Errorf("failed to load document %s: %w", a.DocumentID, err)
		}
		if doc.CompanyID != companyID || doc.PartyID != party.PartyID {
			return nil, fmt.Errorf("%w: document %s not found", apperrors.ErrValidation, a.DocumentID)
		}
		remaining := doc.RemainingBase()
		if a.Amount.Sub(remaining).GreaterThan(accounting.Epsilon) {
			return nil, fmt.Errorf("%w: document %s has %s remaining, allocation is %s", apperrors.ErrOverAllocation, a.DocumentID, remaining.String(), a.Amount.String())
		}
		amountDoc, err := accounting.FromBase(a.Amount, doc.ExchangeRate)
		if err != nil {
			return nil, err
		}
		allocations = append(allocations, dto.AllocationResponse{
			DocumentID: a.DocumentID,
			Amount:     a.Amount,
			AmountDoc:  amountDoc,
		})
		total = total.Add(a.Amount)
	}
	if total.Sub(amountBase).GreaterThan(accounting.Epsilon) {
		return nil, fmt.Errorf("%w: allocations total %s exceeds payment %s", apperrors.ErrOverAllocation, total.String(), amountBase.String())
	}
	return allocations, nil
}

// prepareCashJournal validates the cash side of a payment and builds its
// journal request: money in against AR for customers, money out against AP
// for suppliers. It performs no writes, so it can run before the payment
// mutates anything.
func (s *allocationService) prepareCashJournal(ctx context.Context, company *domain.Company, party *domain.Party, cashAccountID string, amountBase decimal.Decimal, date time.Time, userID string) (*dto.PostJournalRequest, error) {
	account, err := s.accountSvc.GetAccountByID(ctx, company.CompanyID, cashAccountID, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: cash account %s", apperrors.ErrUnknownAccount, cashAccountID)
		}
		return nil, fmt.Errorf("failed to validate cash account: %w", err)
	}
	if !account.IsActive {
		return nil, fmt.Errorf("%w: cash account %s is inactive", apperrors.ErrValidation, cashAccountID)
	}

	acc := company.DefaultAccounts
	var txns []dto.CreateTransactionRequest
	if party.Kind == domain.Customer {
		if acc.AccountsReceivable == "" {
			return nil, fmt.Errorf("%w: accounts receivable account is not configured", apperrors.ErrMissingDefaultAccounts)
		}
		txns = []dto.CreateTransactionRequest{
			{AccountID: cashAccountID, Amount: amountBase, TransactionType: domain.Debit, Notes: "payment received"},
			{AccountID: acc.AccountsReceivable, Amount: amountBase, TransactionType: domain.Credit, Notes: "receivable settled"},
		}
	} else {
		if acc.AccountsPayable == "" {
			return nil, fmt.Errorf("%w: accounts payable account is not configured", apperrors.ErrMissingDefaultAccounts)
		}
		txns = []dto.CreateTransactionRequest{
			{AccountID: acc.AccountsPayable, Amount: amountBase, TransactionType: domain.Debit, Notes: "payable settled"},
			{AccountID: cashAccountID, Amount: amountBase, TransactionType: domain.Credit, Notes: "payment made"},
		}
	}

	return &dto.PostJournalRequest{
		Date:         date,
		Description:  fmt.Sprintf("Payment %s (%s)", party.Name, party.Kind),
		Transactions: txns,
	}, nil
}
