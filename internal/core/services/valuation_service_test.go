package services_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/makznkaljaafari/makhzan_ledger/internal/apperrors"
	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
	portssvc "github.com/makznkaljaafari/makhzan_ledger/internal/core/ports/services"
	"github.com/makznkaljaafari/makhzan_ledger/internal/core/services"
	"github.com/makznkaljaafari/makhzan_ledger/internal/middleware"
)

// recordingHandler collects slog records so tests can assert on log levels.
type recordingHandler struct {
	records *[]slog.Record
}

func (h recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h recordingHandler) Handle(_ context.Context, r slog.Record) error {
	*h.records = append(*h.records, r)
	return nil
}

func (h recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h recordingHandler) WithGroup(string) slog.Handler { return h }

type ValuationServiceTestSuite struct {
	suite.Suite
	mockInventoryRepo *MockInventoryRepository
	mockCompanySvc    *MockCompanyService
	service           portssvc.ValuationSvcFacade
	companyID         string
	userID            string
}

func (suite *ValuationServiceTestSuite) SetupTest() {
	suite.mockInventoryRepo = new(MockInventoryRepository)
	suite.mockCompanySvc = new(MockCompanyService)
	suite.service = services.NewValuationService(suite.mockInventoryRepo, suite.mockCompanySvc)

	suite.companyID = uuid.NewString()
	suite.userID = uuid.NewString()
}

func (suite *ValuationServiceTestSuite) newItem(qty int64, avgCost decimal.Decimal) *domain.InventoryItem {
	return &domain.InventoryItem{
		ItemID:         uuid.NewString(),
		CompanyID:      suite.companyID,
		Name:           "Widget",
		QuantityOnHand: qty,
		AverageCost:    avgCost,
		IsActive:       true,
	}
}

func (suite *ValuationServiceTestSuite) TestReceive_WeightedAverage() {
	ctx := context.Background()
	item := suite.newItem(10, decimal.NewFromInt(5))

	suite.mockInventoryRepo.On("FindItemByID", ctx, item.ItemID).Return(item, nil).Once()

	var saved domain.InventoryItem
	suite.mockInventoryRepo.On("UpdateItemValuation", ctx, mock.AnythingOfType("domain.InventoryItem")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.InventoryItem)
		}).Return(nil).Once()

	// 10 on hand at 5 plus 10 received at 7 averages to 6.
	updated, err := suite.service.Receive(ctx, suite.companyID, item.ItemID, 10, decimal.NewFromInt(7), suite.userID)

	suite.Require().NoError(err)
	suite.EqualValues(20, updated.QuantityOnHand)
	suite.True(updated.AverageCost.Equal(decimal.NewFromInt(6)), "expected average cost 6, got %s", updated.AverageCost)
	suite.True(saved.AverageCost.Equal(decimal.NewFromInt(6)))
	suite.True(saved.PurchasePrice.Equal(decimal.NewFromInt(7)))
	suite.mockInventoryRepo.AssertExpectations(suite.T())
}

func (suite *ValuationServiceTestSuite) TestReceive_ResetsAverageOnEmptyStock() {
	ctx := context.Background()
	item := suite.newItem(0, decimal.NewFromInt(9))

	suite.mockInventoryRepo.On("FindItemByID", ctx, item.ItemID).Return(item, nil).Once()
	suite.mockInventoryRepo.On("UpdateItemValuation", ctx, mock.AnythingOfType("domain.InventoryItem")).Return(nil).Once()

	updated, err := suite.service.Receive(ctx, suite.companyID, item.ItemID, 4, decimal.NewFromInt(3), suite.userID)

	suite.Require().NoError(err)
	suite.EqualValues(4, updated.QuantityOnHand)
	suite.True(updated.AverageCost.Equal(decimal.NewFromInt(3)), "stale average must not survive an empty-stock receipt")
}

func (suite *ValuationServiceTestSuite) TestReceive_ResetsAverageOnNegativeStock() {
	ctx := context.Background()
	item := suite.newItem(-5, decimal.NewFromInt(9))

	suite.mockInventoryRepo.On("FindItemByID", ctx, item.ItemID).Return(item, nil).Once()
	suite.mockInventoryRepo.On("UpdateItemValuation", ctx, mock.AnythingOfType("domain.InventoryItem")).Return(nil).Once()

	updated, err := suite.service.Receive(ctx, suite.companyID, item.ItemID, 8, decimal.NewFromInt(4), suite.userID)

	suite.Require().NoError(err)
	suite.EqualValues(3, updated.QuantityOnHand)
	suite.True(updated.AverageCost.Equal(decimal.NewFromInt(4)))
}

func (suite *ValuationServiceTestSuite) TestReceive_RejectsNonPositiveQuantity() {
	ctx := context.Background()

	_, err := suite.service.Receive(ctx, suite.companyID, uuid.NewString(), 0, decimal.NewFromInt(2), suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockInventoryRepo.AssertNotCalled(suite.T(), "UpdateItemValuation", mock.Anything, mock.Anything)
}

func (suite *ValuationServiceTestSuite) TestConsume_InsufficientStock() {
	ctx := context.Background()
	item := suite.newItem(5, decimal.NewFromInt(2))
	company := &domain.Company{CompanyID: suite.companyID, AllowNegativeStock: false}

	suite.mockCompanySvc.On("FindCompanyByID", ctx, suite.companyID).Return(company, nil).Once()
	suite.mockInventoryRepo.On("FindItemByID", ctx, item.ItemID).Return(item, nil).Once()

	_, err := suite.service.Consume(ctx, suite.companyID, item.ItemID, 8, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientStock)
	suite.mockInventoryRepo.AssertNotCalled(suite.T(), "UpdateItemValuation", mock.Anything, mock.Anything)
}

func (suite *ValuationServiceTestSuite) TestConsume_NegativeStockAllowed() {
	ctx := context.Background()
	item := suite.newItem(5, decimal.NewFromInt(2))
	company := &domain.Company{CompanyID: suite.companyID, AllowNegativeStock: true}

	suite.mockCompanySvc.On("FindCompanyByID", ctx, suite.companyID).Return(company, nil).Once()
	suite.mockInventoryRepo.On("FindItemByID", ctx, item.ItemID).Return(item, nil).Once()
	suite.mockInventoryRepo.On("UpdateItemValuation", ctx, mock.AnythingOfType("domain.InventoryItem")).Return(nil).Once()

	updated, err := suite.service.Consume(ctx, suite.companyID, item.ItemID, 8, suite.userID)

	suite.Require().NoError(err)
	suite.EqualValues(-3, updated.QuantityOnHand)
	suite.True(updated.AverageCost.Equal(decimal.NewFromInt(2)), "consumption must not move the average cost")
}

func (suite *ValuationServiceTestSuite) TestConsume_WarnsOnNegativeBalance() {
	var records []slog.Record
	ctx := middleware.ContextWithLogger(context.Background(), slog.New(recordingHandler{records: &records}))

	item := suite.newItem(5, decimal.NewFromInt(2))
	company := &domain.Company{CompanyID: suite.companyID, AllowNegativeStock: true}

	suite.mockCompanySvc.On("FindCompanyByID", ctx, suite.companyID).Return(company, nil).Once()
	suite.mockInventoryRepo.On("FindItemByID", ctx, item.ItemID).Return(item, nil).Once()
	suite.mockInventoryRepo.On("UpdateItemValuation", ctx, mock.AnythingOfType("domain.InventoryItem")).Return(nil).Once()

	updated, err := suite.service.Consume(ctx, suite.companyID, item.ItemID, 8, suite.userID)

	suite.Require().NoError(err)
	suite.EqualValues(-3, updated.QuantityOnHand)

	var warned bool
	for _, r := range records {
		if r.Level == slog.LevelWarn {
			warned = true
		}
	}
	suite.True(warned, "oversell into negative stock must log at warn level")
}

func (suite *ValuationServiceTestSuite) TestCostOf() {
	ctx := context.Background()
	item := suite.newItem(10, decimal.RequireFromString("2.5"))

	suite.mockInventoryRepo.On("FindItemByID", ctx, item.ItemID).Return(item, nil).Once()

	cost, err := suite.service.CostOf(ctx, suite.companyID, item.ItemID, 4)

	suite.Require().NoError(err)
	suite.True(cost.Equal(decimal.NewFromInt(10)))
}

func (suite *ValuationServiceTestSuite) TestCostOf_WrongCompany() {
	ctx := context.Background()
	item := suite.newItem(10, decimal.NewFromInt(1))
	item.CompanyID = uuid.NewString()

	suite.mockInventoryRepo.On("FindItemByID", ctx, item.ItemID).Return(item, nil).Once()

	_, err := suite.service.CostOf(ctx, suite.companyID, item.ItemID, 1)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestValuationServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ValuationServiceTestSuite))
}
