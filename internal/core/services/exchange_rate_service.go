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

// exchangeRateService manages per-company exchange rates into the base
// currency. Rates are snapshots: documents copy the applicable rate at
// creation, so updating a stored rate never rewrites history.
type exchangeRateService struct {
	rateRepo    portsrepo.ExchangeRateRepositoryFacade
	currencySvc portssvc.CurrencySvcFacade
	companySvc  portssvc.CompanySvcFacade
}

// NewExchangeRateService creates a new ExchangeRateService.
func NewExchangeRateService(rr portsrepo.ExchangeRateRepositoryFacade, currencySvc portssvc.CurrencySvcFacade, companySvc portssvc.CompanySvcFacade) portssvc.ExchangeRateSvcFacade {
	return &exchangeRateService{
		rateRepo:    rr,
		currencySvc: currencySvc,
		companySvc:  companySvc,
	}
}

var _ portssvc.ExchangeRateSvcFacade = (*exchangeRateService)(nil)

// ResolveRate returns the effective rate for converting currencyCode into
// the company's base currency. The base currency itself resolves to 1.
func (s *exchangeRateService) ResolveRate(ctx context.Context, companyID string, currencyCode string, userID string) (decimal.Decimal, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	company, err := s.companySvc.FindCompanyByID(ctx, companyID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load company: %w", err)
	}

	if currencyCode == "" || currencyCode == company.BaseCurrencyCode {
		return decimal.NewFromInt(1), nil
	}

	rate, err := s.rateRepo.FindExchangeRate(ctx, companyID, currencyCode, company.BaseCurrencyCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("No exchange rate configured", slog.String("company_id", companyID), slog.String("currency_code", currencyCode))
			return decimal.Zero, fmt.Errorf("%w: no rate from %s to %s", apperrors.ErrInvalidRate, currencyCode, company.BaseCurrencyCode)
		}
		logger.Error("Failed to look up exchange rate", slog.String("error", err.Error()), slog.String("currency_code", currencyCode))
		return decimal.Zero, fmt.Errorf("failed to look up exchange rate: %w", err)
	}

	if err := accounting.ValidateRate(rate.Rate); err != nil {
		return decimal.Zero, err
	}
	return rate.Rate, nil
}

// SetExchangeRate stores a new rate snapshot for the company.
func (s *exchangeRateService) SetExchangeRate(ctx context.Context, companyID string, req dto.SetExchangeRateRequest, userID string) (*domain.ExchangeRate, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleAdmin); err != nil {
		return nil, err
	}

	company, err := s.companySvc.FindCompanyByID(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load company: %w", err)
	}

	if err := accounting.ValidateRate(req.Rate); err != nil {
		return nil, err
	}
	if req.FromCurrencyCode == company.BaseCurrencyCode {
		return nil, fmt.Errorf("%w: cannot set a rate for the base currency itself", apperrors.ErrValidation)
	}

	// The foreign currency must exist in the catalog.
	if _, err := s.currencySvc.GetCurrencyByCode(ctx, req.FromCurrencyCode, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: currency %s not found", apperrors.ErrValidation, req.FromCurrencyCode)
		}
		return nil, err
	}

	now := time.Now()
	rate := domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		CompanyID:        companyID,
		FromCurrencyCode: req.FromCurrencyCode,
		ToCurrencyCode:   company.BaseCurrencyCode,
		Rate:             req.Rate,
		DateEffective:    req.DateEffective,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.rateRepo.SaveExchangeRate(ctx, rate); err != nil {
		logger.Error("Failed to save exchange rate", slog.String("error", err.Error()), slog.String("company_id", companyID), slog.String("currency_code", req.FromCurrencyCode))
		return nil, fmt.Errorf("failed to save exchange rate: %w", err)
	}

	logger.Info("Exchange rate set", slog.String("company_id", companyID), slog.String("from", rate.FromCurrencyCode), slog.String("to", rate.ToCurrencyCode), slog.String("rate", rate.Rate.String()))
	return &rate, nil
}

// ListExchangeRates retrieves the company's stored rates.
func (s *exchangeRateService) ListExchangeRates(ctx context.Context, companyID string, userID string) ([]domain.ExchangeRate, error) {
	if err := s.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	rates, err := s.rateRepo.ListExchangeRates(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange rates: %w", err)
	}
	if rates == nil {
		rates = []domain.ExchangeRate{}
	}
	return rates, nil
}
