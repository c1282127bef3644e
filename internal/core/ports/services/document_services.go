package services

import (
	"context"

	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
	"github.com/makznkaljaafari/makhzan_ledger/internal/dto"
)

// DocumentReaderSvc defines read operations for business documents
type DocumentReaderSvc interface {
	// GetDocumentByID retrieves a specific document.
	GetDocumentByID(ctx context.Context, companyID string, documentID string, userID string) (*domain.Document, error)

	// ListDocuments retrieves a paginated list of documents for a company.
	ListDocuments(ctx context.Context, companyID string, userID string, params dto.ListDocumentsParams) (*dto.ListDocumentsResponse, error)
}

// DocumentWriterSvc defines write operations for business documents
type DocumentWriterSvc interface {
	// CreateDocument persists a new document, snapshotting the exchange
	// rate. Credit documents move the counterparty's aggregate debt.
	CreateDocument(ctx context.Context, companyID string, req dto.CreateDocumentRequest, userID string) (*domain.Document, error)

	// ReceivePurchaseOrder marks a PO received and books the stock receipt
	// (quantity + weighted-average cost) for every line.
	ReceivePurchaseOrder(ctx context.Context, companyID string, documentID string, userID string) (*domain.Document, error)
}

// DocumentSvcFacade combines the document service interfaces
type DocumentSvcFacade interface {
	DocumentReaderSvc
	DocumentWriterSvc
}

// PostingSvcFacade is the document posting engine: it translates a business
// document into a balanced journal entry and marks the document posted.
type PostingSvcFacade interface {
	// PostDocument posts any of the closed set of document kinds. Posting an
	// already-posted document fails with apperrors.ErrAlreadyPosted and
	// leaves everything unchanged.
	PostDocument(ctx context.Context, companyID string, documentID string, userID string) (*domain.Journal, error)
}
