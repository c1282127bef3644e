package services

import (
	"context"

	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
	"github.com/makznkaljaafari/makhzan_ledger/internal/dto"
)

type PartyReaderSvc interface {
	GetPartyByID(ctx context.Context, companyID string, partyID string, userID string) (*domain.Party, error)
	ListParties(ctx context.Context, companyID string, params dto.ListPartiesParams, userID string) (*dto.ListPartiesResponse, error)
	// GetPartyStatement returns the party's payment history rows newest first.
	GetPartyStatement(ctx context.Context, companyID string, partyID string, params dto.ListPaymentHistoryParams, userID string) (*dto.ListPaymentHistoryResponse, error)
}

type PartyWriterSvc interface {
	CreateParty(ctx context.Context, companyID string, req dto.CreatePartyRequest, userID string) (*domain.Party, error)
	UpdateParty(ctx context.Context, companyID string, partyID string, req dto.UpdatePartyRequest, userID string) (*domain.Party, error)
	DeactivateParty(ctx context.Context, companyID string, partyID string, userID string) error
}

type PartySvcFacade interface {
	PartyReaderSvc
	PartyWriterSvc
}
