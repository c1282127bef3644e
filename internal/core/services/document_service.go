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

// documentService manages the lifecycle of business documents up to the
// point of posting: creation with an exchange-rate snapshot, and the
// receiving step for purchase orders.
type documentService struct {
	documentRepo  portsrepo.DocumentRepositoryFacade
	partyRepo     portsrepo.PartyRepositoryFacade
	inventoryRepo portsrepo.InventoryReader
	valuationSvc  portssvc.ValuationSvcFacade
	rateSvc       portssvc.ExchangeRateSvcFacade
	companySvc    portssvc.CompanySvcFacade
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(
	dr portsrepo.DocumentRepositoryFacade,
	pr portsrepo.PartyRepositoryFacade,
	ir portsrepo.InventoryReader,
	valuationSvc portssvc.ValuationSvcFacade,
	rateSvc portssvc.ExchangeRateSvcFacade,
	companySvc portssvc.CompanySvcFacade,
) portssvc.DocumentSvcFacade {
	return &documentService{
		documentRepo:  dr,
		partyRepo:     pr,
		inventoryRepo: ir,
		valuationSvc:  valuationSvc,
		rateSvc:       rateSvc,
		companySvc:    companySvc,
	}
}

var _ portssvc.DocumentSvcFacade = (*documentService)(nil)

// expectedPartyKind maps a document kind to the counterparty kind it is
// written against.
func expectedPartyKind(kind domain.DocumentKind) domain.PartyKind {
	switch kind {
	case domain.SaleDoc, domain.SalesReturnDoc:
		return domain.Customer
	default:
		return domain.Supplier
	}
}

// CreateDocument persists a new document, snapshotting the exchange rate at
// creation. Credit documents immediately move the counterparty's aggregate
// debt and append a history row.
func (s *documentService) CreateDocument(ctx context.Context, companyID string, req dto.CreateDocumentRequest, userID string) (*domain.Document, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleMember); err != nil {
		logger.Warn("Authorization failed for CreateDocument", slog.String("user_id", userID), slog.String("company_id", companyID), slog.String("error", err.Error()))
		return nil, err
	}

	company, err := s.companySvc.FindCompanyByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company: %w", err)
	}

	party, err := s.partyRepo.FindPartyByID(ctx, req.PartyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: party %s not found", apperrors.ErrValidation, req.PartyID)
		}
		return nil, fmt.Errorf("failed to load party: %w", err)
	}
	if party.CompanyID != companyID {
		return nil, fmt.Errorf("%w: party %s not found", apperrors.ErrValidation, req.PartyID)
	}
	if party.Kind != expectedPartyKind(req.Kind) {
		return nil, fmt.Errorf("%w: document kind %s requires a %s party", apperrors.ErrValidation, req.Kind, expectedPartyKind(req.Kind))
	}

	// Resolve and snapshot the exchange rate.
	currencyCode := req.CurrencyCode
	if currencyCode == "" {
		currencyCode = company.BaseCurrencyCode
	}
	rate, err := s.rateSvc.ResolveRate(ctx, companyID, currencyCode, userID)
	if err != nil {
		return nil, err
	}

	// Validate lines against the item catalog.
	if len(req.Lines) == 0 {
		return nil, fmt.Errorf("%w: document requires at least one line", apperrors.ErrValidation)
	}
	itemIDs := make([]string, 0, len(req.Lines))
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: line quantity must be positive for item %s", apperrors.ErrValidation, line.ItemID)
		}
		if line.UnitPrice.IsNegative() {
			return nil, fmt.Errorf("%w: line unit price must not be negative for item %s", apperrors.ErrValidation, line.ItemID)
		}
		itemIDs = append(itemIDs, line.ItemID)
	}
	itemsMap, err := s.inventoryRepo.FindItemsByIDs(ctx, itemIDs)
	if err != nil {
		logger.Error("Failed to fetch items for document lines", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to fetch items: %w", err)
	}
	for _, id := range itemIDs {
		item, found := itemsMap[id]
		if !found || item.CompanyID != companyID {
			return nil, fmt.Errorf("%w: item %s not found", apperrors.ErrValidation, id)
		}
	}

	// Returns must reference the posted document they reverse.
	var originalDocumentID *string
	if req.Kind == domain.SalesReturnDoc || req.Kind == domain.PurchaseReturnDoc {
		if req.OriginalDocumentID == nil || *req.OriginalDocumentID == "" {
			return nil, fmt.Errorf("%w: returns require originalDocumentID", apperrors.ErrValidation)
		}
		original, err := s.documentRepo.FindDocumentByID(ctx, *req.OriginalDocumentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: original document %s not found", apperrors.ErrValidation, *req.OriginalDocumentID)
			}
			return nil, fmt.Errorf("failed to load original document: %w", err)
		}
		if original.CompanyID != companyID || original.PartyID != req.PartyID {
			return nil, fmt.Errorf("%w: original document %s not found", apperrors.ErrValidation, *req.OriginalDocumentID)
		}
		wantKind := domain.SaleDoc
		if req.Kind == domain.PurchaseReturnDoc {
			wantKind = domain.PurchaseOrderDoc
		}
		if original.Kind != wantKind {
			return nil, fmt.Errorf("%w: %s must reference a %s document", apperrors.ErrValidation, req.Kind, wantKind)
		}
		if !original.IsPosted {
			return nil, fmt.Errorf("%w: original document %s is not posted", apperrors.ErrValidation, *req.OriginalDocumentID)
		}
		originalDocumentID = req.OriginalDocumentID
	}

	total := decimal.Zero
	lines := make([]domain.DocumentLine, len(req.Lines))
	for i, line := range req.Lines {
		lines[i] = domain.DocumentLine{
			ItemID:    line.ItemID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(line.Quantity)))
	}
	total = accounting.RoundCurrency(total)

	now := time.Now()
	doc := domain.Document{
		DocumentID:         uuid.NewString(),
		CompanyID:          companyID,
		Kind:               req.Kind,
		PartyID:            party.PartyID,
		PartyName:          party.Name,
		DocumentDate:       req.DocumentDate,
		CurrencyCode:       currencyCode,
		ExchangeRate:       rate,
		Lines:              lines,
		Total:              total,
		PaidAmount:         decimal.Zero,
		IsCredit:           req.IsCredit,
		Status:             domain.DocumentOpen,
		IsPosted:           false,
		OriginalDocumentID: originalDocumentID,
		Notes:              req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.documentRepo.SaveDocument(ctx, doc); err != nil {
		logger.Error("Failed to save document", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to create document: %w", err)
	}

	// Credit sales and credit purchases open a debt against the party at
	// creation time; returns settle debt later, at posting.
	if doc.IsCredit && (doc.Kind == domain.SaleDoc || doc.Kind == domain.PurchaseOrderDoc) {
		totalBase, err := accounting.ToBase(doc.Total, doc.ExchangeRate)
		if err != nil {
			return nil, err
		}
		if err := s.partyRepo.AdjustTotalDebt(ctx, party.PartyID, totalBase, userID, now); err != nil {
			logger.Error("Failed to adjust party debt for credit document", slog.String("error", err.Error()), slog.String("party_id", party.PartyID), slog.String("document_id", doc.DocumentID))
			return nil, fmt.Errorf("failed to adjust party debt: %w", err)
		}
		record := domain.PaymentRecord{
			RecordID:     uuid.NewString(),
			CompanyID:    companyID,
			PartyID:      party.PartyID,
			Date:         doc.DocumentDate,
			Amount:       totalBase,
			Type:         domain.RecordPurchase,
			RefID:        doc.DocumentID,
			CurrencyCode: doc.CurrencyCode,
			ExchangeRate: doc.ExchangeRate,
			Notes:        doc.Notes,
			CreatedAt:    now,
			CreatedBy:    userID,
		}
		if err := s.partyRepo.SavePaymentRecord(ctx, record); err != nil {
			logger.Error("Failed to append payment history for credit document", slog.String("error", err.Error()), slog.String("party_id", party.PartyID))
			return nil, fmt.Errorf("failed to append payment history: %w", err)
		}
	}

	logger.Info("Document created", slog.String("document_id", doc.DocumentID), slog.String("kind", string(doc.Kind)), slog.String("company_id", companyID))
	return &doc, nil
}

// GetDocumentByID retrieves a specific document scoped to the company.
func (s *documentService) GetDocumentByID(ctx context.Context, companyID string, documentID string, userID string) (*domain.Document, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	doc, err := s.documentRepo.FindDocumentByID(ctx, documentID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find document by ID", slog.String("error", err.Error()), slog.String("document_id", documentID))
		}
		return nil, err
	}
	if doc.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return doc, nil
}

// ListDocuments retrieves a paginated list of documents for a company.
func (s *documentService) ListDocuments(ctx context.Context, companyID string, userID string, params dto.ListDocumentsParams) (*dto.ListDocumentsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	docs, nextToken, err := s.documentRepo.ListDocumentsByCompany(ctx, companyID, params.Kind, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list documents from repository", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	resp := &dto.ListDocumentsResponse{
		Documents: dto.ToListDocumentResponse(docs),
		NextToken: nextToken,
	}
	return resp, nil
}

// ReceivePurchaseOrder marks a purchase order received and books the stock
// receipt for every line at the line price converted to base currency. The
// journal entry waits for the posting step.
func (s *documentService) ReceivePurchaseOrder(ctx context.Context, companyID string, documentID string, userID string) (*domain.Document, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	doc, err := s.GetDocumentByID(ctx, companyID, documentID, userID)
	if err != nil {
		return nil, err
	}

	if doc.Kind != domain.PurchaseOrderDoc {
		return nil, fmt.Errorf("%w: only purchase orders can be received", apperrors.ErrValidation)
	}
	if doc.Status == domain.DocumentReceived {
		return nil, fmt.Errorf("%w: document %s is already received", apperrors.ErrConflict, documentID)
	}

	company, err := s.companySvc.FindCompanyByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company: %w", err)
	}

	// Stock is valued at the pre-VAT cost. Input VAT goes to the VAT
	// receivable account at posting, so the inventory account and the
	// item valuation stay on the same basis.
	vatDivisor := decimal.NewFromInt(1)
	if company.VATEnabled && !company.VATRate.IsZero() {
		vatDivisor = vatDivisor.Add(company.VATRate)
	}

	for _, line := range doc.Lines {
		unitCostBase, err := accounting.ToBase(line.UnitPrice, doc.ExchangeRate)
		if err != nil {
			return nil, err
		}
		unitCostBase = unitCostBase.DivRound(vatDivisor, accounting.CurrencyPrecision+4)
		if _, err := s.valuationSvc.Receive(ctx, companyID, line.ItemID, line.Quantity, unitCostBase, userID); err != nil {
			logger.Error("Failed to receive stock for purchase order line", slog.String("error", err.Error()), slog.String("document_id", documentID), slog.String("item_id", line.ItemID))
			return nil, fmt.Errorf("failed to receive stock for item %s: %w", line.ItemID, err)
		}
	}

	now := time.Now()
	if err := s.documentRepo.MarkReceived(ctx, documentID, userID, now); err != nil {
		logger.Error("Failed to mark purchase order received", slog.String("error", err.Error()), slog.String("document_id", documentID))
		return nil, fmt.Errorf("failed to mark document received: %w", err)
	}

	doc.Status = domain.DocumentReceived
	doc.LastUpdatedAt = now
	doc.LastUpdatedBy = userID

	logger.Info("Purchase order received", slog.String("document_id", documentID), slog.String("company_id", companyID))
	return doc, nil
}
