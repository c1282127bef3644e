package dto

import (
	"time"

	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DocumentLineRequest is one item row on a document being created.
type DocumentLineRequest struct {
	ItemID    string          `json:"itemID" binding:"required"`
	Quantity  int64           `json:"quantity" binding:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unitPrice" binding:"required"`
}

// CreateDocumentRequest defines the data needed to create a business
// document. The exchange rate for CurrencyCode is resolved and snapshotted
// at creation; omit CurrencyCode to use the company base currency.
type CreateDocumentRequest struct {
	Kind               domain.DocumentKind   `json:"kind" binding:"required,oneof=SALE PURCHASE_ORDER SALES_RETURN PURCHASE_RETURN"`
	PartyID            string                `json:"partyID" binding:"required"`
	DocumentDate       time.Time             `json:"documentDate" binding:"required"`
	CurrencyCode       string                `json:"currencyCode"`
	Lines              []DocumentLineRequest `json:"lines" binding:"required,min=1,dive"`
	IsCredit           bool                  `json:"isCredit"`
	OriginalDocumentID *string               `json:"originalDocumentID"` // Required for returns
	Notes              string                `json:"notes"`
}

// DocumentLineResponse is one item row of a document response.
type DocumentLineResponse struct {
	ItemID    string          `json:"itemID"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// DocumentResponse defines the data returned for a document.
type DocumentResponse struct {
	DocumentID         string                 `json:"documentID"`
	CompanyID          string                 `json:"companyID"`
	Kind               domain.DocumentKind    `json:"kind"`
	PartyID            string                 `json:"partyID"`
	PartyName          string                 `json:"partyName"`
	DocumentDate       time.Time              `json:"documentDate"`
	CurrencyCode       string                 `json:"currencyCode"`
	ExchangeRate       decimal.Decimal        `json:"exchangeRate"`
	Lines              []DocumentLineResponse `json:"lines"`
	Total              decimal.Decimal        `json:"total"`
	PaidAmount         decimal.Decimal        `json:"paidAmount"`
	Remaining          decimal.Decimal        `json:"remaining"`
	IsCredit           bool                   `json:"isCredit"`
	Status             domain.DocumentStatus  `json:"status"`
	IsPosted           bool                   `json:"isPosted"`
	JournalID          *string                `json:"journalID,omitempty"`
	OriginalDocumentID *string                `json:"originalDocumentID,omitempty"`
	Notes              string                 `json:"notes,omitempty"`
	CreatedAt          time.Time              `json:"createdAt"`
	CreatedBy          string                 `json:"createdBy"`
}

// ToDocumentResponse converts a domain.Document to DocumentResponse DTO.
func ToDocumentResponse(d *domain.Document) DocumentResponse {
	lines := make([]DocumentLineResponse, len(d.Lines))
	for i, l := range d.Lines {
		lines[i] = DocumentLineResponse{ItemID: l.ItemID, Quantity: l.Quantity, UnitPrice: l.UnitPrice}
	}
	return DocumentResponse{
		DocumentID:         d.DocumentID,
		CompanyID:          d.CompanyID,
		Kind:               d.Kind,
		PartyID:            d.PartyID,
		PartyName:          d.PartyName,
		DocumentDate:       d.DocumentDate,
		CurrencyCode:       d.CurrencyCode,
		ExchangeRate:       d.ExchangeRate,
		Lines:              lines,
		Total:              d.Total,
		PaidAmount:         d.PaidAmount,
		Remaining:          d.Remaining(),
		IsCredit:           d.IsCredit,
		Status:             d.Status,
		IsPosted:           d.IsPosted,
		JournalID:          d.JournalID,
		OriginalDocumentID: d.OriginalDocumentID,
		Notes:              d.Notes,
		CreatedAt:          d.CreatedAt,
		CreatedBy:          d.CreatedBy,
	}
}

// ToListDocumentResponse converts a slice of domain.Document to DTOs.
func ToListDocumentResponse(docs []domain.Document) []DocumentResponse {
	res := make([]DocumentResponse, len(docs))
	for i, d := range docs {
		res[i] = ToDocumentResponse(&d)
	}
	return res
}

// ListDocumentsParams defines query parameters for listing documents.
type ListDocumentsParams struct {
	Kind            *domain.DocumentKind `form:"kind"`
	PartyID         *string              `form:"partyID"`
	OutstandingOnly bool                 `form:"outstandingOnly,default=false"`
	Limit           int                  `form:"limit,default=20"`
	NextToken       *string              `form:"nextToken"`
}

// ListDocumentsResponse wraps a page of documents.
type ListDocumentsResponse struct {
	Documents []DocumentResponse `json:"documents"`
	NextToken *string            `json:"nextToken,omitempty"`
}
