package dto

import (
	"time"

	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreatePartyRequest defines the data needed to create a counterparty.
type CreatePartyRequest struct {
	Name  string           `json:"name" binding:"required"`
	Kind  domain.PartyKind `json:"kind" binding:"required,oneof=CUSTOMER SUPPLIER"`
	Phone string           `json:"phone"`
	Notes string           `json:"notes"`
}

// UpdatePartyRequest defines the fields allowed for updating a party.
// TotalDebt is excluded: it only moves through documents and payments.
type UpdatePartyRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Notes *string `json:"notes"`
}

// PartyResponse defines the data returned for a party.
type PartyResponse struct {
	PartyID       string           `json:"partyID"`
	CompanyID     string           `json:"companyID"`
	Name          string           `json:"name"`
	Kind          domain.PartyKind `json:"kind"`
	Phone         string           `json:"phone,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	TotalDebt     decimal.Decimal  `json:"totalDebt"`
	IsActive      bool             `json:"isActive"`
	CreatedAt     time.Time        `json:"createdAt"`
	LastUpdatedAt time.Time        `json:"lastUpdatedAt"`
}

// ToPartyResponse converts a domain.Party to PartyResponse DTO.
func ToPartyResponse(p *domain.Party) PartyResponse {
	return PartyResponse{
		PartyID:       p.PartyID,
		CompanyID:     p.CompanyID,
		Name:          p.Name,
		Kind:          p.Kind,
		Phone:         p.Phone,
		Notes:         p.Notes,
		TotalDebt:     p.TotalDebt,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
		LastUpdatedAt: p.LastUpdatedAt,
	}
}

// ToListPartyResponse converts a slice of domain.Party to DTOs.
func ToListPartyResponse(parties []domain.Party) []PartyResponse {
	res := make([]PartyResponse, len(parties))
	for i, p := range parties {
		res[i] = ToPartyResponse(&p)
	}
	return res
}

// ListPartiesParams defines query parameters for listing parties.
type ListPartiesParams struct {
	Kind   *domain.PartyKind `form:"kind"`
	Limit  int               `form:"limit,default=20"`
	Offset int               `form:"offset,default=0"`
}

// ListPartiesResponse wraps the list of parties.
type ListPartiesResponse struct {
	Parties []PartyResponse `json:"parties"`
}

// PaymentRecordResponse defines one row of a party's payment history.
type PaymentRecordResponse struct {
	RecordID     string                   `json:"recordID"`
	PartyID      string                   `json:"partyID"`
	Date         time.Time                `json:"date"`
	Amount       decimal.Decimal          `json:"amount"`
	Type         domain.PaymentRecordType `json:"type"`
	RefID        string                   `json:"refID,omitempty"`
	Method       string                   `json:"method,omitempty"`
	CurrencyCode string                   `json:"currencyCode"`
	ExchangeRate decimal.Decimal          `json:"exchangeRate"`
	Notes        string                   `json:"notes,omitempty"`
	CreatedAt    time.Time                `json:"createdAt"`
}

// ToPaymentRecordResponse converts a domain.PaymentRecord to its DTO.
func ToPaymentRecordResponse(r *domain.PaymentRecord) PaymentRecordResponse {
	return PaymentRecordResponse{
		RecordID:     r.RecordID,
		PartyID:      r.PartyID,
		Date:         r.Date,
		Amount:       r.Amount,
		Type:         r.Type,
		RefID:        r.RefID,
		Method:       r.Method,
		CurrencyCode: r.CurrencyCode,
		ExchangeRate: r.ExchangeRate,
		Notes:        r.Notes,
		CreatedAt:    r.CreatedAt,
	}
}

// ListPaymentHistoryParams defines query parameters for a party statement.
type ListPaymentHistoryParams struct {
	Limit  int `form:"limit,default=20"`
	Offset int `form:"offset,default=0"`
}

// ListPaymentHistoryResponse wraps a page of payment history rows.
type ListPaymentHistoryResponse struct {
	Records []PaymentRecordResponse `json:"records"`
}
