package services

import (
	"context"

	"github.com/makznkaljaafari/makhzan_ledger/internal/dto"
)

// AllocationSvcFacade is the payment allocation engine. A payment is a
// transient computation: it is fully consumed by ApplyPayment in one atomic
// step, and no partially-applied payment exists outside that call.
type AllocationSvcFacade interface {
	// ApplyPayment applies a payment across a counterparty's outstanding
	// documents, either from caller-supplied allocations or via FIFO
	// auto-apply (oldest document first). It updates each document's paid
	// amount, the party's aggregate debt and payment history, and books a
	// cash-movement journal when a source account is given.
	ApplyPayment(ctx context.Context, companyID string, req dto.ApplyPaymentRequest, userID string) (*dto.PaymentResponse, error)

	// SuggestAllocations runs the FIFO auto-apply computation without
	// mutating anything, for the caller to preview or edit.
	SuggestAllocations(ctx context.Context, companyID string, req dto.SuggestAllocationsRequest, userID string) ([]dto.AllocationResponse, error)
}
