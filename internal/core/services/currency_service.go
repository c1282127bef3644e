package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/makznkaljaafari/makhzan_ledger/internal/apperrors"
	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
	portsrepo "github.com/makznkaljaafari/makhzan_ledger/internal/core/ports/repositories"
	portssvc "github.com/makznkaljaafari/makhzan_ledger/internal/core/ports/services"
	"github.com/makznkaljaafari/makhzan_ledger/internal/dto"
	"github.com/makznkaljaafari/makhzan_ledger/internal/middleware"
)

// currencyService manages the shared currency catalog.
type currencyService struct {
	currencyRepo portsrepo.CurrencyRepositoryFacade
}

// NewCurrencyService creates a new CurrencyService.
func NewCurrencyService(cr portsrepo.CurrencyRepositoryFacade) portssvc.CurrencySvcFacade {
	return &currencyService{currencyRepo: cr}
}

var _ portssvc.CurrencySvcFacade = (*currencyService)(nil)

// CreateCurrency persists a new currency.
func (s *currencyService) CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, userID string) (*domain.Currency, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	// Reject duplicates up front for a clean error.
	if _, err := s.currencyRepo.FindCurrencyByCode(ctx, req.CurrencyCode); err == nil {
		return nil, fmt.Errorf("%w: currency %s already exists", apperrors.ErrDuplicate, req.CurrencyCode)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check currency existence: %w", err)
	}

	now := time.Now()
	currency := domain.Currency{
		CurrencyCode: req.CurrencyCode,
		Symbol:       req.Symbol,
		Name:         req.Name,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.currencyRepo.SaveCurrency(ctx, currency); err != nil {
		logger.Error("Failed to save currency", slog.String("error", err.Error()), slog.String("currency_code", req.CurrencyCode))
		return nil, fmt.Errorf("failed to create currency: %w", err)
	}

	logger.Info("Currency created", slog.String("currency_code", currency.CurrencyCode))
	return &currency, nil
}

// GetCurrencyByCode retrieves a specific currency by its code.
func (s *currencyService) GetCurrencyByCode(ctx context.Context, code string, userID string) (*domain.Currency, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	currency, err := s.currencyRepo.FindCurrencyByCode(ctx, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find currency by code", slog.String("error", err.Error()), slog.String("currency_code", code))
		}
		return nil, err
	}
	return currency, nil
}

// ListCurrencies retrieves all available currencies.
func (s *currencyService) ListCurrencies(ctx context.Context, userID string) ([]domain.Currency, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	currencies, err := s.currencyRepo.ListCurrencies(ctx)
	if err != nil {
		logger.Error("Failed to list currencies", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list currencies: %w", err)
	}
	if currencies == nil {
		currencies = []domain.Currency{}
	}
	return currencies, nil
}
