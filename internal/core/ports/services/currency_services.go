package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
	"github.com/makznkaljaafari/makhzan_ledger/internal/dto"
)

type CurrencySvcFacade interface {
	GetCurrencyByCode(ctx context.Context, code string, userID string) (*domain.Currency, error)
	ListCurrencies(ctx context.Context, userID string) ([]domain.Currency, error)
	CreateCurrency(ctx context.Context, req dto.CreateCurrencyRequest, userID string) (*domain.Currency, error)
}

type ExchangeRateSvcFacade interface {
	// ResolveRate returns the effective rate for converting currencyCode into
	// the company's base currency. The base currency itself resolves to 1.
	ResolveRate(ctx context.Context, companyID string, currencyCode string, userID string) (decimal.Decimal, error)
	SetExchangeRate(ctx context.Context, companyID string, req dto.SetExchangeRateRequest, userID string) (*domain.ExchangeRate, error)
	ListExchangeRates(ctx context.Context, companyID string, userID string) ([]domain.ExchangeRate, error)
}
