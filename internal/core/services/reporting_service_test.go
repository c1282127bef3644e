package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/makznkaljaafari/makhzan_ledger/internal/apperrors"
	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
	portssvc "github.com/makznkaljaafari/makhzan_ledger/internal/core/ports/services"
	"github.com/makznkaljaafari/makhzan_ledger/internal/core/services"
)

type ReportingServiceTestSuite struct {
	suite.Suite
	mockReportingRepo *MockReportingRepository
	mockCompanySvc    *MockCompanyService
	service           portssvc.ReportingSvcFacade
	companyID         string
	userID            string
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.mockReportingRepo = new(MockReportingRepository)
	suite.mockCompanySvc = new(MockCompanyService)
	suite.service = services.NewReportingService(suite.mockReportingRepo, suite.mockCompanySvc)

	suite.companyID = uuid.NewString()
	suite.userID = uuid.NewString()
}

func (suite *ReportingServiceTestSuite) account(name string, accType domain.AccountType, balance int64) domain.Account {
	return domain.Account{
		AccountID:   uuid.NewString(),
		CompanyID:   suite.companyID,
		Name:        name,
		AccountType: accType,
		IsActive:    true,
		Balance:     decimal.NewFromInt(balance),
	}
}

func (suite *ReportingServiceTestSuite) TestGetTrialBalance_SplitsByNaturalSide() {
	ctx := context.Background()
	accounts := []domain.Account{
		suite.account("Cash", domain.Asset, 150),
		suite.account("Revenue", domain.Revenue, -100),
		suite.account("VAT Payable", domain.Liability, -50),
	}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockReportingRepo.On("GetTrialBalanceData", ctx, suite.companyID).Return(accounts, nil).Once()

	tb, err := suite.service.GetTrialBalance(ctx, suite.companyID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(tb.Rows, 3)

	suite.True(tb.Rows[0].Debit.Equal(decimal.NewFromInt(150)))
	suite.True(tb.Rows[0].Credit.IsZero())
	suite.True(tb.Rows[1].Credit.Equal(decimal.NewFromInt(100)))
	suite.True(tb.Rows[1].Debit.IsZero())
	suite.True(tb.Rows[2].Credit.Equal(decimal.NewFromInt(50)))

	suite.True(tb.TotalDebit.Equal(decimal.NewFromInt(150)))
	suite.True(tb.TotalCredit.Equal(decimal.NewFromInt(150)))
	suite.mockReportingRepo.AssertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestGetTrialBalance_ContraBalanceLandsOppositeColumn() {
	ctx := context.Background()
	// An asset driven negative shows up in the credit column, positive.
	accounts := []domain.Account{
		suite.account("Bank Overdraft", domain.Asset, -40),
		suite.account("Owner Drawings", domain.Equity, 40),
	}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockReportingRepo.On("GetTrialBalanceData", ctx, suite.companyID).Return(accounts, nil).Once()

	tb, err := suite.service.GetTrialBalance(ctx, suite.companyID, suite.userID)

	suite.Require().NoError(err)
	suite.True(tb.Rows[0].Credit.Equal(decimal.NewFromInt(40)))
	suite.True(tb.Rows[0].Debit.IsZero())
	suite.True(tb.Rows[1].Debit.Equal(decimal.NewFromInt(40)))
	suite.True(tb.TotalDebit.Equal(tb.TotalCredit))
}

func (suite *ReportingServiceTestSuite) TestGetTrialBalance_ZeroBalanceRowKept() {
	ctx := context.Background()
	accounts := []domain.Account{
		suite.account("Dormant", domain.Expense, 0),
	}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockReportingRepo.On("GetTrialBalanceData", ctx, suite.companyID).Return(accounts, nil).Once()

	tb, err := suite.service.GetTrialBalance(ctx, suite.companyID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().Len(tb.Rows, 1)
	suite.True(tb.Rows[0].Debit.IsZero())
	suite.True(tb.Rows[0].Credit.IsZero())
	suite.True(tb.TotalDebit.IsZero())
	suite.True(tb.TotalCredit.IsZero())
}

func (suite *ReportingServiceTestSuite) TestGetTrialBalance_AuthorizationFail() {
	ctx := context.Background()

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleReadOnly).Return(apperrors.ErrForbidden).Once()

	tb, err := suite.service.GetTrialBalance(ctx, suite.companyID, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(tb)
	suite.mockReportingRepo.AssertNotCalled(suite.T(), "GetTrialBalanceData")
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
