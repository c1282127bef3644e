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
)

// partyService manages counterparties. The aggregate debt on a party is
// never set directly here; it moves through documents, returns and payments.
type partyService struct {
	partyRepo  portsrepo.PartyRepositoryFacade
	companySvc portssvc.CompanyAuthorizerSvc
}

// NewPartyService creates a new PartyService.
func NewPartyService(pr portsrepo.PartyRepositoryFacade, companySvc portssvc.CompanyAuthorizerSvc) portssvc.PartySvcFacade {
	return &partyService{
		partyRepo:  pr,
		companySvc: companySvc,
	}
}

var _ portssvc.PartySvcFacade = (*partyService)(nil)

// CreateParty persists a new counterparty with zero outstanding debt.
func (s *partyService) CreateParty(ctx context.Context, companyID string, req dto.CreatePartyRequest, userID string) (*domain.Party, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	now := time.Now()
	party := domain.Party{
		PartyID:   uuid.NewString(),
		CompanyID: companyID,
		Name:      req.Name,
		Kind:      req.Kind,
		Phone:     req.Phone,
		Notes:     req.Notes,
		TotalDebt: decimal.Zero,
		IsActive:  true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.partyRepo.SaveParty(ctx, party); err != nil {
		logger.Error("Failed to save party in repository", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to create party: %w", err)
	}

	logger.Info("Party created", slog.String("party_id", party.PartyID), slog.String("kind", string(party.Kind)), slog.String("company_id", companyID))
	return &party, nil
}

// GetPartyByID retrieves a specific party scoped to the company.
func (s *partyService) GetPartyByID(ctx context.Context, companyID string, partyID string, userID string) (*domain.Party, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	party, err := s.partyRepo.FindPartyByID(ctx, partyID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find party by ID", slog.String("error", err.Error()), slog.String("party_id", partyID))
		}
		return nil, err
	}
	if party.CompanyID != companyID {
		return nil, apperrors.ErrNotFound
	}
	return party, nil
}

// ListParties retrieves a paginated list of parties for a company.
func (s *partyService) ListParties(ctx context.Context, companyID string, params dto.ListPartiesParams, userID string) (*dto.ListPartiesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	parties, err := s.partyRepo.ListParties(ctx, companyID, params.Kind, limit, offset)
	if err != nil {
		logger.Error("Failed to list parties from repository", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to list parties: %w", err)
	}

	return &dto.ListPartiesResponse{Parties: dto.ToListPartyResponse(parties)}, nil
}

// GetPartyStatement returns the party's payment history rows newest first.
func (s *partyService) GetPartyStatement(ctx context.Context, companyID string, partyID string, params dto.ListPaymentHistoryParams, userID string) (*dto.ListPaymentHistoryResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	// Scope check doubles as the authorization check.
	if _, err := s.GetPartyByID(ctx, companyID, partyID, userID); err != nil {
		return nil, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	records, err := s.partyRepo.ListPaymentRecords(ctx, companyID, partyID, limit, offset)
	if err != nil {
		logger.Error("Failed to list payment records", slog.String("error", err.Error()), slog.String("party_id", partyID))
		return nil, fmt.Errorf("failed to list payment history: %w", err)
	}

	resp := &dto.ListPaymentHistoryResponse{
		Records: make([]dto.PaymentRecordResponse, len(records)),
	}
	for i, r := range records {
		resp.Records[i] = dto.ToPaymentRecordResponse(&r)
	}
	return resp, nil
}

// UpdateParty updates a party's descriptive fields.
func (s *partyService) UpdateParty(ctx context.Context, companyID string, partyID string, req dto.UpdatePartyRequest, userID string) (*domain.Party, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleMember); err != nil {
		return nil, err
	}

	party, err := s.GetPartyByID(ctx, companyID, partyID, userID)
	if err != nil {
		return nil, err
	}

	updated := false
	if req.Name != nil {
		party.Name = *req.Name
		updated = true
	}
	if req.Phone != nil {
		party.Phone = *req.Phone
		updated = true
	}
	if req.Notes != nil {
		party.Notes = *req.Notes
		updated = true
	}
	if !updated {
		return party, nil
	}

	now := time.Now()
	party.LastUpdatedAt = now
	party.LastUpdatedBy = userID

	if err := s.partyRepo.UpdateParty(ctx, *party); err != nil {
		logger.Error("Failed to update party in repository", slog.String("error", err.Error()), slog.String("party_id", partyID))
		return nil, fmt.Errorf("failed to update party: %w", err)
	}
	return party, nil
}

// DeactivateParty marks a party inactive. History and debt stay readable.
func (s *partyService) DeactivateParty(ctx context.Context, companyID string, partyID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleAdmin); err != nil {
		return err
	}

	party, err := s.GetPartyByID(ctx, companyID, partyID, userID)
	if err != nil {
		return err
	}
	if !party.IsActive {
		return nil
	}

	party.IsActive = false
	now := time.Now()
	party.LastUpdatedAt = now
	party.LastUpdatedBy = userID

	if err := s.partyRepo.UpdateParty(ctx, *party); err != nil {
		logger.Error("Failed to deactivate party", slog.String("error", err.Error()), slog.String("party_id", partyID))
		return fmt.Errorf("failed to deactivate party: %w", err)
	}

	logger.Info("Party deactivated", slog.String("party_id", partyID), slog.String("company_id", companyID))
	return nil
}
