package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AllocationRequest pins part of a payment to one document. Amount is in
// base currency and must not exceed the document's remaining balance.
type AllocationRequest struct {
	DocumentID string          `json:"documentID" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
}

// ApplyPaymentRequest defines a payment to apply against a party's
// outstanding documents. Either explicit Allocations are given or AutoApply
// selects documents oldest first. Amount is in CurrencyCode units; omit
// CurrencyCode to pay in the company base currency.
type ApplyPaymentRequest struct {
	PartyID       string              `json:"partyID" binding:"required"`
	Amount        decimal.Decimal     `json:"amount" binding:"required"`
	CurrencyCode  string              `json:"currencyCode"`
	Date          time.Time           `json:"date" binding:"required"`
	Method        string              `json:"method"`
	Notes         string              `json:"notes"`
	AutoApply     bool                `json:"autoApply"`
	Allocations   []AllocationRequest `json:"allocations" binding:"omitempty,dive"`
	FromAccountID *string             `json:"fromAccountID"` // Cash or bank account; set to book a journal
}

// SuggestAllocationsRequest asks for the FIFO allocation a payment of the
// given amount would produce, without applying it.
type SuggestAllocationsRequest struct {
	PartyID      string          `json:"partyID" binding:"required"`
	Amount       decimal.Decimal `json:"amount" binding:"required"`
	CurrencyCode string          `json:"currencyCode"`
}

// AllocationResponse is one document's share of an applied payment.
type AllocationResponse struct {
	DocumentID string          `json:"documentID"`
	// Amount is the base-currency portion applied to this document.
	Amount decimal.Decimal `json:"amount"`
	// AmountDoc is the same portion in the document's own currency.
	AmountDoc decimal.Decimal `json:"amountDoc"`
}

// PaymentResponse reports the outcome of ApplyPayment.
type PaymentResponse struct {
	PartyID      string               `json:"partyID"`
	AmountBase   decimal.Decimal      `json:"amountBase"`
	Allocations  []AllocationResponse `json:"allocations"`
	Unapplied    decimal.Decimal      `json:"unapplied"` // Base currency remainder left unallocated
	NewTotalDebt decimal.Decimal      `json:"newTotalDebt"`
	JournalID    *string              `json:"journalID,omitempty"`
}
