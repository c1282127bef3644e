package services

import (
	"context"
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

// postingService translates business documents into balanced journal
// entries. Each document kind has a fixed posting rule; the switch over
// kinds is exhaustive and posting an unknown kind fails loudly.
type postingService struct {
	documentRepo portsrepo.DocumentRepositoryFacade
	partyRepo    portsrepo.PartyRepositoryFacade
	valuationSvc portssvc.ValuationSvcFacade
	journalSvc   portssvc.JournalSvcFacade
	companySvc   portssvc.CompanySvcFacade
}

// NewPostingService creates a new PostingService.
func NewPostingService(
	dr portsrepo.DocumentRepositoryFacade,
	pr portsrepo.PartyRepositoryFacade,
	valuationSvc portssvc.ValuationSvcFacade,
	journalSvc portssvc.JournalSvcFacade,
	companySvc portssvc.CompanySvcFacade,
) portssvc.PostingSvcFacade {
	return &postingService{
		documentRepo: dr,
		partyRepo:    pr,
		valuationSvc: valuationSvc,
		journalSvc:   journalSvc,
		companySvc:   companySvc,
	}
}

var _ portssvc.PostingSvcFacade = (*postingService)(nil)

// vatSplit divides a VAT-inclusive base amount into its pre-VAT and VAT
// portions. The pre-VAT part is rounded to currency precision and the VAT
// part absorbs the remainder, so the two always re-sum to the total exactly.
func vatSplit(totalBase decimal.Decimal, company *domain.Company) (preVat, vat decimal.Decimal) {
	if !company.VATEnabled || company.VATRate.IsZero() {
		return totalBase, decimal.Zero
	}
	divisor := decimal.NewFromInt(1).Add(company.VATRate)
	preVat = accounting.RoundCurrency(totalBase.Div(divisor))
	vat = totalBase.Sub(preVat)
	return preVat, vat
}

// entry is one line of a posting rule before it becomes a dto transaction.
type entry struct {
	accountID string
	amount    decimal.Decimal
	txnType   domain.TransactionType
	notes     string
}

// requireAccounts checks that every named default account is configured.
func requireAccounts(accounts map[string]string) error {
	for name, id := range accounts {
		if id == "" {
			return fmt.Errorf("%w: %s account is not configured", apperrors.ErrMissingDefaultAccounts, name)
		}
	}
	return nil
}

// lineCosts returns the current average-cost value of each document line
// and their total, without mutating valuation state.
func (s *postingService) lineCosts(ctx context.Context, companyID string, doc *domain.Document) (map[string]decimal.Decimal, decimal.Decimal, error) {
	costs := make(map[string]decimal.Decimal, len(doc.Lines))
	total := decimal.Zero
	for _, line := range doc.Lines {
		cost, err := s.valuationSvc.CostOf(ctx, companyID, line.ItemID, line.Quantity)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("failed to cost item %s: %w", line.ItemID, err)
		}
		cost = accounting.RoundCurrency(cost)
		costs[line.ItemID] = cost
		total = total.Add(cost)
	}
	return costs, total, nil
}

// PostDocument posts a document: it books the journal for the document's
// kind, marks the document posted, moves inventory, and settles party debt
// for credit returns. Posting an already-posted document fails and changes
// nothing.
func (s *postingService) PostDocument(ctx context.Context, companyID string, documentID string, userID string) (*domain.Journal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleMember); err != nil {
		logger.Warn("Authorization failed for PostDocument", slog.String("user_id", userID), slog.String("company_id", companyID), slog.String("error", err.Error()))
		return nil, err
	}

	company, err := s.companySvc.FindCompanyByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company: %w", err)
	}

	doc, err := s.documentRepo.FindDocumentByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	if doc.IsPosted {
		return nil, fmt.Errorf("%w: document %s", apperrors.ErrAlreadyPosted, documentID)
	}

	totalBase, err := accounting.ToBase(doc.Total, doc.ExchangeRate)
	if err != nil {
		return nil, err
	}
	totalBase = accounting.RoundCurrency(totalBase)

	var entries []entry
	switch doc.Kind {
	case domain.SaleDoc:
		entries, err = s.saleEntries(ctx, company, doc, totalBase)
	case domain.PurchaseOrderDoc:
		entries, err = s.purchaseEntries(company, doc, totalBase)
	case domain.SalesReturnDoc:
		entries, err = s.salesReturnEntries(ctx, company, doc, totalBase)
	case domain.PurchaseReturnDoc:
		entries, err = s.purchaseReturnEntries(company, doc, totalBase)
	default:
		err = fmt.Errorf("%w: unknown document kind %q", apperrors.ErrValidation, doc.Kind)
	}
	if err != nil {
		return nil, err
	}

	// Validate stock policy before any write, so a failed consumption
	// cannot leave a posted journal behind.
	if doc.Kind == domain.SaleDoc || doc.Kind == domain.PurchaseReturnDoc {
		if err := s.checkStock(ctx, company, doc); err != nil {
			return nil, err
		}
	}

	txns := make([]dto.CreateTransactionRequest, 0, len(entries))
	for _, e := range entries {
		if e.amount.IsZero() {
			continue // VAT-free postings drop their VAT line
		}
		txns = append(txns, dto.CreateTransactionRequest{
			AccountID:       e.accountID,
			Amount:          e.amount,
			TransactionType: e.txnType,
			Notes:           e.notes,
		})
	}

	journal, err := s.journalSvc.PostJournal(ctx, companyID, dto.PostJournalRequest{
		Date:         doc.DocumentDate,
		Description:  fmt.Sprintf("%s %s (%s)", doc.Kind, doc.DocumentID, doc.PartyName),
		Transactions: txns,
	}, userID)
	if err != nil {
		logger.Error("Failed to post journal for document", slog.String("error", err.Error()), slog.String("document_id", documentID))
		return nil, err
	}

	now := time.Now()
	if err := s.documentRepo.MarkPosted(ctx, documentID, journal.JournalID, userID, now); err != nil {
		logger.Error("Failed to mark document posted", slog.String("error", err.Error()), slog.String("document_id", documentID), slog.String("journal_id", journal.JournalID))
		return nil, fmt.Errorf("failed to mark document posted: %w", err)
	}

	if err := s.moveInventory(ctx, company, doc, userID); err != nil {
		logger.Error("Failed to move inventory for posted document", slog.String("error", err.Error()), slog.String("document_id", documentID))
		return nil, err
	}

	if err := s.settleReturnDebt(ctx, doc, totalBase, userID, now); err != nil {
		logger.Error("Failed to settle return debt", slog.String("error", err.Error()), slog.String("document_id", documentID))
		return nil, err
	}

	logger.Info("Document posted", slog.String("document_id", documentID), slog.String("journal_id", journal.JournalID), slog.String("kind", string(doc.Kind)))
	return journal, nil
}

// saleEntries books revenue and the cost of goods sold:
// Debit AR total, Credit Sales preVat, Credit VAT payable, and
// Debit COGS / Credit Inventory at weighted-average cost.
func (s *postingService) saleEntries(ctx context.Context, company *domain.Company, doc *domain.Document, totalBase decimal.Decimal) ([]entry, error) {
	acc := company.DefaultAccounts
	if err := requireAccounts(map[string]string{
		"accounts receivable": acc.AccountsReceivable,
		"sales":               acc.Sales,
		"cogs":                acc.COGS,
		"inventory":           acc.Inventory,
	}); err != nil {
		return nil, err
	}
	preVat, vat := vatSplit(totalBase, company)
	if !vat.IsZero() && acc.VATPayable == "" {
		return nil, fmt.Errorf("%w: vat payable account is not configured", apperrors.ErrMissingDefaultAccounts)
	}

	_, costTotal, err := s.lineCosts(ctx, company.CompanyID, doc)
	if err != nil {
		return nil, err
	}

	entries := []entry{
		{acc.AccountsReceivable, totalBase, domain.Debit, "sale total"},
		{acc.Sales, preVat, domain.Credit, "sale revenue"},
		{acc.VATPayable, vat, domain.Credit, "output VAT"},
		{acc.COGS, costTotal, domain.Debit, "cost of goods sold"},
		{acc.Inventory, costTotal, domain.Credit, "inventory relief"},
	}
	return entries, nil
}

// purchaseEntries books a received purchase order:
// Debit Inventory preVat, Debit VAT receivable, Credit AP total.
// The stock itself moved at the receiving step.
func (s *postingService) purchaseEntries(company *domain.Company, doc *domain.Document, totalBase decimal.Decimal) ([]entry, error) {
	if doc.Status != domain.DocumentReceived {
		return nil, fmt.Errorf("%w: purchase order %s must be received before posting", apperrors.ErrNotReceived, doc.DocumentID)
	}
	acc := company.DefaultAccounts
	if err := requireAccounts(map[string]string{
		"accounts payable": acc.AccountsPayable,
		"inventory":        acc.Inventory,
	}); err != nil {
		return nil, err
	}
	preVat, vat := vatSplit(totalBase, company)
	if !vat.IsZero() && acc.VATReceivable == "" {
		return nil, fmt.Errorf("%w: vat receivable account is not configured", apperrors.ErrMissingDefaultAccounts)
	}

	entries := []entry{
		{acc.Inventory, preVat, domain.Debit, "stock received"},
		{acc.VATReceivable, vat, domain.Debit, "input VAT"},
		{acc.AccountsPayable, totalBase, domain.Credit, "purchase total"},
	}
	return entries, nil
}

// salesReturnEntries reverses a sale:
// Debit SalesReturn preVat, Debit VAT payable, Credit AR total, and
// Debit Inventory / Credit COGS at the current weighted-average cost.
func (s *postingService) salesReturnEntries(ctx context.Context, company *domain.Company, doc *domain.Document, totalBase decimal.Decimal) ([]entry, error) {
	acc := company.DefaultAccounts
	if err := requireAccounts(map[string]string{
		"accounts receivable": acc.AccountsReceivable,
		"sales return":        acc.SalesReturn,
		"cogs":                acc.COGS,
		"inventory":           acc.Inventory,
	}); err != nil {
		return nil, err
	}
	preVat, vat := vatSplit(totalBase, company)
	if !vat.IsZero() && acc.VATPayable == "" {
		return nil, fmt.Errorf("%w: vat payable account is not configured", apperrors.ErrMissingDefaultAccounts)
	}

	_, costTotal, err := s.lineCosts(ctx, company.CompanyID, doc)
	if err != nil {
		return nil, err
	}

	entries := []entry{
		{acc.SalesReturn, preVat, domain.Debit, "sales return"},
		{acc.VATPayable, vat, domain.Debit, "output VAT reversal"},
		{acc.AccountsReceivable, totalBase, domain.Credit, "receivable reduced"},
		{acc.Inventory, costTotal, domain.Debit, "stock returned"},
		{acc.COGS, costTotal, domain.Credit, "cost reversal"},
	}
	return entries, nil
}

// purchaseReturnEntries reverses a purchase:
// Debit AP total, Credit Inventory preVat, Credit VAT receivable.
func (s *postingService) purchaseReturnEntries(company *domain.Company, doc *domain.Document, totalBase decimal.Decimal) ([]entry, error) {
	acc := company.DefaultAccounts
	if err := requireAccounts(map[string]string{
		"accounts payable": acc.AccountsPayable,
		"inventory":        acc.Inventory,
	}); err != nil {
		return nil, err
	}
	preVat, vat := vatSplit(totalBase, company)
	if !vat.IsZero() && acc.VATReceivable == "" {
		return nil, fmt.Errorf("%w: vat receivable account is not configured", apperrors.ErrMissingDefaultAccounts)
	}

	entries := []entry{
		{acc.AccountsPayable, totalBase, domain.Debit, "payable reduced"},
		{acc.Inventory, preVat, domain.Credit, "stock returned to supplier"},
		{acc.VATReceivable, vat, domain.Credit, "input VAT reversal"},
	}
	return entries, nil
}

// checkStock pre-validates outbound quantities against the company's stock
// policy so posting fails before any ledger write.
func (s *postingService) checkStock(ctx context.Context, company *domain.Company, doc *domain.Document) error {
	if company.AllowNegativeStock {
		return nil
	}
	for _, line := range doc.Lines {
		item, err := s.valuationSvc.GetItemByID(ctx, company.CompanyID, line.ItemID, doc.CreatedBy)
		if err != nil {
			return err
		}
		if item.QuantityOnHand < line.Quantity {
			return fmt.Errorf("%w: item %s has %d on hand, requested %d", apperrors.ErrInsufficientStock, line.ItemID, item.QuantityOnHand, line.Quantity)
		}
	}
	return nil
}

// moveInventory applies the stock side effects of posting. Purchase orders
// already moved stock at the receiving step.
func (s *postingService) moveInventory(ctx context.Context, company *domain.Company, doc *domain.Document, userID string) error {
	switch doc.Kind {
	case domain.SaleDoc, domain.PurchaseReturnDoc:
		for _, line := range doc.Lines {
			if _, err := s.valuationSvc.Consume(ctx, company.CompanyID, line.ItemID, line.Quantity, userID); err != nil {
				return fmt.Errorf("failed to consume stock for item %s: %w", line.ItemID, err)
			}
		}
	case domain.SalesReturnDoc:
		// Returned goods come back at the current average cost, which
		// leaves the average itself unchanged.
		for _, line := range doc.Lines {
			item, err := s.valuationSvc.GetItemByID(ctx, company.CompanyID, line.ItemID, userID)
			if err != nil {
				return err
			}
			if _, err := s.valuationSvc.Receive(ctx, company.CompanyID, line.ItemID, line.Quantity, item.AverageCost, userID); err != nil {
				return fmt.Errorf("failed to restock item %s: %w", line.ItemID, err)
			}
		}
	}
	return nil
}

// settleReturnDebt reduces the party's debt when a return reverses a credit
// document, and appends the RETURN history row.
func (s *postingService) settleReturnDebt(ctx context.Context, doc *domain.Document, totalBase decimal.Decimal, userID string, now time.Time) error {
	if doc.Kind != domain.SalesReturnDoc && doc.Kind != domain.PurchaseReturnDoc {
		return nil
	}
	if doc.OriginalDocumentID == nil {
		return nil
	}
	original, err := s.documentRepo.FindDocumentByID(ctx, *doc.OriginalDocumentID)
	if err != nil {
		return fmt.Errorf("failed to load original document: %w", err)
	}
	if !original.IsCredit {
		return nil
	}

	if err := s.partyRepo.AdjustTotalDebt(ctx, doc.PartyID, totalBase.Neg(), userID, now); err != nil {
		return fmt.Errorf("failed to reduce party debt: %w", err)
	}
	record := domain.PaymentRecord{
		RecordID:     uuid.NewString(),
		CompanyID:    doc.CompanyID,
		PartyID:      doc.PartyID,
		Date:         doc.DocumentDate,
		Amount:       totalBase,
		Type:         domain.RecordReturn,
		RefID:        doc.DocumentID,
		CurrencyCode: doc.CurrencyCode,
		ExchangeRate: doc.ExchangeRate,
		Notes:        doc.Notes,
		CreatedAt:    now,
		CreatedBy:    userID,
	}
	if err := s.partyRepo.SavePaymentRecord(ctx, record); err != nil {
		return fmt.Errorf("failed to append return history: %w", err)
	}
	return nil
}
