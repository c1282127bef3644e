package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/makznkaljaafari/makhzan_ledger/internal/apperrors"
	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
	portssvc "github.com/makznkaljaafari/makhzan_ledger/internal/core/ports/services"
	"github.com/makznkaljaafari/makhzan_ledger/internal/core/services"
	"github.com/makznkaljaafari/makhzan_ledger/internal/dto"
)

type ExchangeRateServiceTestSuite struct {
	suite.Suite
	mockRateRepo    *MockExchangeRateRepository
	mockCurrencySvc *MockCurrencyService
	mockCompanySvc  *MockCompanyService
	service         portssvc.ExchangeRateSvcFacade
	companyID       string
	userID          string
	company         *domain.Company
}

func (suite *ExchangeRateServiceTestSuite) SetupTest() {
	suite.mockRateRepo = new(MockExchangeRateRepository)
	suite.mockCurrencySvc = new(MockCurrencyService)
	suite.mockCompanySvc = new(MockCompanyService)
	suite.service = services.NewExchangeRateService(suite.mockRateRepo, suite.mockCurrencySvc, suite.mockCompanySvc)

	suite.companyID = uuid.NewString()
	suite.userID = uuid.NewString()
	suite.company = &domain.Company{
		CompanyID:        suite.companyID,
		Name:             "Makhzan Trading",
		BaseCurrencyCode: "SAR",
	}
}

func (suite *ExchangeRateServiceTestSuite) TestResolveRate_BaseCurrencyIsUnity() {
	ctx := context.Background()

	suite.mockCompanySvc.On("FindCompanyByID", ctx, suite.companyID).Return(suite.company, nil).Twice()

	rate, err := suite.service.ResolveRate(ctx, suite.companyID, "SAR", suite.userID)
	suite.Require().NoError(err)
	suite.True(rate.Equal(decimal.NewFromInt(1)))

	// An empty currency code means the document is in the base currency.
	rate, err = suite.service.ResolveRate(ctx, suite.companyID, "", suite.userID)
	suite.Require().NoError(err)
	suite.True(rate.Equal(decimal.NewFromInt(1)))

	suite.mockRateRepo.AssertNotCalled(suite.T(), "FindExchangeRate")
}

func (suite *ExchangeRateServiceTestSuite) TestResolveRate_ReturnsStoredRate() {
	ctx := context.Background()
	stored := &domain.ExchangeRate{
		ExchangeRateID:   uuid.NewString(),
		CompanyID:        suite.companyID,
		FromCurrencyCode: "USD",
		ToCurrencyCode:   "SAR",
		Rate:             decimal.RequireFromString("3.75"),
	}

	suite.mockCompanySvc.On("FindCompanyByID", ctx, suite.companyID).Return(suite.company, nil).Once()
	suite.mockRateRepo.On("FindExchangeRate", ctx, suite.companyID, "USD", "SAR").Return(stored, nil).Once()

	rate, err := suite.service.ResolveRate(ctx, suite.companyID, "USD", suite.userID)

	suite.Require().NoError(err)
	suite.True(rate.Equal(decimal.RequireFromString("3.75")))
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestResolveRate_MissingRate() {
	ctx := context.Background()

	suite.mockCompanySvc.On("FindCompanyByID", ctx, suite.companyID).Return(suite.company, nil).Once()
	suite.mockRateRepo.On("FindExchangeRate", ctx, suite.companyID, "EUR", "SAR").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.ResolveRate(ctx, suite.companyID, "EUR", suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrInvalidRate)
}

func (suite *ExchangeRateServiceTestSuite) TestSetExchangeRate_Success() {
	ctx := context.Background()
	req := dto.SetExchangeRateRequest{
		FromCurrencyCode: "USD",
		Rate:             decimal.RequireFromString("3.75"),
		DateEffective:    time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
	}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleAdmin).Return(nil).Once()
	suite.mockCompanySvc.On("FindCompanyByID", ctx, suite.companyID).Return(suite.company, nil).Once()
	suite.mockCurrencySvc.On("GetCurrencyByCode", ctx, "USD", suite.userID).Return(&domain.Currency{CurrencyCode: "USD"}, nil).Once()

	var saved domain.ExchangeRate
	suite.mockRateRepo.On("SaveExchangeRate", ctx, mock.AnythingOfType("domain.ExchangeRate")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.ExchangeRate)
		}).Return(nil).Once()

	rate, err := suite.service.SetExchangeRate(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("USD", rate.FromCurrencyCode)
	suite.Equal("SAR", rate.ToCurrencyCode)
	suite.True(rate.Rate.Equal(decimal.RequireFromString("3.75")))
	suite.Equal(suite.userID, saved.CreatedBy)
	suite.True(saved.DateEffective.Equal(req.DateEffective))
	suite.NotEmpty(saved.ExchangeRateID)
	suite.mockRateRepo.AssertExpectations(suite.T())
}

func (suite *ExchangeRateServiceTestSuite) TestSetExchangeRate_RequiresAdmin() {
	ctx := context.Background()
	req := dto.SetExchangeRateRequest{FromCurrencyCode: "USD", Rate: decimal.NewFromInt(4)}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleAdmin).Return(apperrors.ErrForbidden).Once()

	_, err := suite.service.SetExchangeRate(ctx, suite.companyID, req, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrForbidden)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "SaveExchangeRate")
}

func (suite *ExchangeRateServiceTestSuite) TestSetExchangeRate_RejectsBaseCurrency() {
	ctx := context.Background()
	req := dto.SetExchangeRateRequest{FromCurrencyCode: "SAR", Rate: decimal.NewFromInt(1)}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleAdmin).Return(nil).Once()
	suite.mockCompanySvc.On("FindCompanyByID", ctx, suite.companyID).Return(suite.company, nil).Once()

	_, err := suite.service.SetExchangeRate(ctx, suite.companyID, req, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "SaveExchangeRate")
}

func (suite *ExchangeRateServiceTestSuite) TestSetExchangeRate_RejectsNonPositiveRate() {
	ctx := context.Background()
	req := dto.SetExchangeRateRequest{FromCurrencyCode: "USD", Rate: decimal.Zero}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleAdmin).Return(nil).Once()
	suite.mockCompanySvc.On("FindCompanyByID", ctx, suite.companyID).Return(suite.company, nil).Once()

	_, err := suite.service.SetExchangeRate(ctx, suite.companyID, req, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrInvalidRate)
	suite.mockCurrencySvc.AssertNotCalled(suite.T(), "GetCurrencyByCode")
}

func (suite *ExchangeRateServiceTestSuite) TestSetExchangeRate_UnknownCurrency() {
	ctx := context.Background()
	req := dto.SetExchangeRateRequest{FromCurrencyCode: "XXX", Rate: decimal.NewFromInt(2)}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleAdmin).Return(nil).Once()
	suite.mockCompanySvc.On("FindCompanyByID", ctx, suite.companyID).Return(suite.company, nil).Once()
	suite.mockCurrencySvc.On("GetCurrencyByCode", ctx, "XXX", suite.userID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.SetExchangeRate(ctx, suite.companyID, req, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.mockRateRepo.AssertNotCalled(suite.T(), "SaveExchangeRate")
}

func (suite *ExchangeRateServiceTestSuite) TestListExchangeRates_EmptyIsNotNil() {
	ctx := context.Background()

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockRateRepo.On("ListExchangeRates", ctx, suite.companyID).Return([]domain.ExchangeRate{}, nil).Once()

	rates, err := suite.service.ListExchangeRates(ctx, suite.companyID, suite.userID)

	suite.Require().NoError(err)
	suite.NotNil(rates)
	suite.Empty(rates)
}

func TestExchangeRateServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExchangeRateServiceTestSuite))
}
