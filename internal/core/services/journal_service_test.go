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

type JournalServiceTestSuite struct {
	suite.Suite
	mockJournalRepo  *MockJournalRepository
	mockAccountSvc   *MockAccountService
	mockCompanySvc   *MockCompanyService
	service          portssvc.JournalSvcFacade
	company          domain.Company
	assetAccount     domain.Account
	liabilityAccount domain.Account
	revenueAccount   domain.Account
	companyID        string
	userID           string
}

func (suite *JournalServiceTestSuite) SetupTest() {
	suite.mockJournalRepo = new(MockJournalRepository)
	suite.mockAccountSvc = new(MockAccountService)
	suite.mockCompanySvc = new(MockCompanyService)
	suite.service = services.NewJournalService(suite.mockJournalRepo, suite.mockAccountSvc, suite.mockCompanySvc)

	suite.companyID = uuid.NewString()
	suite.userID = uuid.NewString()

	suite.company = domain.Company{
		CompanyID:        suite.companyID,
		Name:             "Test Trading Co",
		BaseCurrencyCode: "SAR",
		IsActive:         true,
	}
	suite.assetAccount = domain.Account{
		AccountID:   uuid.NewString(),
		CompanyID:   suite.companyID,
		AccountType: domain.Asset,
		IsActive:    true,
	}
	suite.liabilityAccount = domain.Account{
		AccountID:   uuid.NewString(),
		CompanyID:   suite.companyID,
		AccountType: domain.Liability,
		IsActive:    true,
	}
	suite.revenueAccount = domain.Account{
		AccountID:   uuid.NewString(),
		CompanyID:   suite.companyID,
		AccountType: domain.Revenue,
		IsActive:    true,
	}
}

func (suite *JournalServiceTestSuite) expectMemberAuth() {
	suite.mockCompanySvc.On("AuthorizeUserAction", mock.Anything, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockCompanySvc.On("FindCompanyByID", mock.Anything, suite.companyID).Return(&suite.company, nil).Once()
}

func (suite *JournalServiceTestSuite) TestPostJournal_Success() {
	ctx := context.Background()
	req := dto.PostJournalRequest{
		Date:        time.Now(),
		Description: "Cash sale",
		Transactions: []dto.CreateTransactionRequest{
			{AccountID: suite.assetAccount.AccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Debit},
			{AccountID: suite.revenueAccount.AccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Credit},
		},
	}

	suite.expectMemberAuth()

	accountsMap := map[string]domain.Account{
		suite.assetAccount.AccountID:   suite.assetAccount,
		suite.revenueAccount.AccountID: suite.revenueAccount,
	}
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, suite.companyID, []string{suite.assetAccount.AccountID, suite.revenueAccount.AccountID}, suite.userID).Return(accountsMap, nil).Once()
	suite.mockJournalRepo.On("NextEntryNumber", ctx, suite.companyID).Return("JE-000001", nil).Once()

	var savedChanges map[string]decimal.Decimal
	suite.mockJournalRepo.On("SaveJournal", ctx, mock.AnythingOfType("domain.Journal"), mock.AnythingOfType("[]domain.Transaction"), mock.AnythingOfType("map[string]decimal.Decimal")).
		Run(func(args mock.Arguments) {
			savedChanges = args.Get(3).(map[string]decimal.Decimal)
		}).Return(nil).Once()

	journal, err := suite.service.PostJournal(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(journal)
	suite.Equal("JE-000001", journal.EntryNumber)
	suite.Equal(domain.Posted, journal.Status)
	suite.Equal("SAR", journal.CurrencyCode)
	suite.True(journal.Amount.Equal(decimal.NewFromInt(100)))
	suite.Equal(suite.userID, journal.CreatedBy)
	suite.Nil(journal.Transactions)

	// Debiting an asset and crediting revenue both raise their balances
	// under the natural-sign convention.
	suite.Require().NotNil(savedChanges)
	suite.True(savedChanges[suite.assetAccount.AccountID].Equal(decimal.NewFromInt(100)))
	suite.True(savedChanges[suite.revenueAccount.AccountID].Equal(decimal.NewFromInt(100)))

	suite.mockCompanySvc.AssertExpectations(suite.T())
	suite.mockAccountSvc.AssertExpectations(suite.T())
	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestPostJournal_Unbalanced() {
	ctx := context.Background()
	req := dto.PostJournalRequest{
		Date:        time.Now(),
		Description: "Lopsided entry",
		Transactions: []dto.CreateTransactionRequest{
			{AccountID: suite.assetAccount.AccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Debit},
			{AccountID: suite.revenueAccount.AccountID, Amount: decimal.NewFromInt(50), TransactionType: domain.Credit},
		},
	}

	suite.expectMemberAuth()

	_, err := suite.service.PostJournal(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnbalancedEntry)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveJournal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestPostJournal_UnknownAccount() {
	ctx := context.Background()
	unknownID := uuid.NewString()
	req := dto.PostJournalRequest{
		Date:        time.Now(),
		Description: "Entry against missing account",
		Transactions: []dto.CreateTransactionRequest{
			{AccountID: suite.assetAccount.AccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Debit},
			{AccountID: unknownID, Amount: decimal.NewFromInt(100), TransactionType: domain.Credit},
		},
	}

	suite.expectMemberAuth()

	accountsMap := map[string]domain.Account{
		suite.assetAccount.AccountID: suite.assetAccount,
	}
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, suite.companyID, mock.Anything, suite.userID).Return(accountsMap, nil).Once()

	_, err := suite.service.PostJournal(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnknownAccount)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveJournal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestPostJournal_InactiveAccount() {
	ctx := context.Background()
	inactive := suite.liabilityAccount
	inactive.IsActive = false
	req := dto.PostJournalRequest{
		Date:        time.Now(),
		Description: "Entry against inactive account",
		Transactions: []dto.CreateTransactionRequest{
			{AccountID: suite.assetAccount.AccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Debit},
			{AccountID: inactive.AccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Credit},
		},
	}

	suite.expectMemberAuth()

	accountsMap := map[string]domain.Account{
		suite.assetAccount.AccountID: suite.assetAccount,
		inactive.AccountID:           inactive,
	}
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, suite.companyID, mock.Anything, suite.userID).Return(accountsMap, nil).Once()

	_, err := suite.service.PostJournal(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *JournalServiceTestSuite) TestPostJournal_SingleLine() {
	ctx := context.Background()
	req := dto.PostJournalRequest{
		Date:        time.Now(),
		Description: "One-legged entry",
		Transactions: []dto.CreateTransactionRequest{
			{AccountID: suite.assetAccount.AccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Debit},
		},
	}

	suite.expectMemberAuth()

	_, err := suite.service.PostJournal(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, services.ErrJournalMinEntries)
}

func (suite *JournalServiceTestSuite) TestPostJournal_AuthorizationFail() {
	ctx := context.Background()
	req := dto.PostJournalRequest{}

	suite.mockCompanySvc.On("AuthorizeUserAction", mock.Anything, suite.userID, suite.companyID, domain.RoleMember).Return(apperrors.ErrForbidden).Once()

	_, err := suite.service.PostJournal(ctx, suite.companyID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "NextEntryNumber", mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestReverseJournal_Success() {
	ctx := context.Background()
	originalID := uuid.NewString()
	original := domain.Journal{
		JournalID:    originalID,
		CompanyID:    suite.companyID,
		EntryNumber:  "JE-000007",
		JournalDate:  time.Now().AddDate(0, 0, -1),
		Description:  "Original entry",
		CurrencyCode: "SAR",
		Status:       domain.Posted,
		Amount:       decimal.NewFromInt(100),
	}
	originalTxns := []domain.Transaction{
		{TransactionID: uuid.NewString(), JournalID: originalID, AccountID: suite.assetAccount.AccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Debit},
		{TransactionID: uuid.NewString(), JournalID: originalID, AccountID: suite.revenueAccount.AccountID, Amount: decimal.NewFromInt(100), TransactionType: domain.Credit},
	}

	suite.mockCompanySvc.On("AuthorizeUserAction", mock.Anything, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockJournalRepo.On("FindJournalByID", ctx, originalID).Return(&original, nil).Once()
	suite.mockJournalRepo.On("FindTransactionsByJournalID", ctx, originalID).Return(originalTxns, nil).Once()

	accountsMap := map[string]domain.Account{
		suite.assetAccount.AccountID:   suite.assetAccount,
		suite.revenueAccount.AccountID: suite.revenueAccount,
	}
	suite.mockAccountSvc.On("GetAccountByIDs", ctx, suite.companyID, mock.Anything, suite.userID).Return(accountsMap, nil).Once()
	suite.mockJournalRepo.On("NextEntryNumber", ctx, suite.companyID).Return("JE-000008", nil).Once()

	var savedTxns []domain.Transaction
	var savedChanges map[string]decimal.Decimal
	suite.mockJournalRepo.On("SaveJournal", ctx, mock.AnythingOfType("domain.Journal"), mock.AnythingOfType("[]domain.Transaction"), mock.AnythingOfType("map[string]decimal.Decimal")).
		Run(func(args mock.Arguments) {
			savedTxns = args.Get(2).([]domain.Transaction)
			savedChanges = args.Get(3).(map[string]decimal.Decimal)
		}).Return(nil).Once()
	suite.mockJournalRepo.On("UpdateJournalStatusAndLinks", ctx, originalID, domain.Reversed, mock.AnythingOfType("*string"), (*string)(nil), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()

	reversing, err := suite.service.ReverseJournal(ctx, suite.companyID, originalID, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(reversing)
	suite.Equal("JE-000008", reversing.EntryNumber)
	suite.Require().NotNil(reversing.OriginalJournalID)
	suite.Equal(originalID, *reversing.OriginalJournalID)

	// Each line changes sides, so the balance deltas exactly undo the
	// original posting.
	suite.Require().Len(savedTxns, 2)
	suite.Equal(domain.Credit, savedTxns[0].TransactionType)
	suite.Equal(domain.Debit, savedTxns[1].TransactionType)
	suite.True(savedChanges[suite.assetAccount.AccountID].Equal(decimal.NewFromInt(-100)))
	suite.True(savedChanges[suite.revenueAccount.AccountID].Equal(decimal.NewFromInt(-100)))

	suite.mockJournalRepo.AssertExpectations(suite.T())
}

func (suite *JournalServiceTestSuite) TestReverseJournal_AlreadyReversed() {
	ctx := context.Background()
	originalID := uuid.NewString()
	original := domain.Journal{
		JournalID: originalID,
		CompanyID: suite.companyID,
		Status:    domain.Reversed,
	}

	suite.mockCompanySvc.On("AuthorizeUserAction", mock.Anything, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockJournalRepo.On("FindJournalByID", ctx, originalID).Return(&original, nil).Once()

	_, err := suite.service.ReverseJournal(ctx, suite.companyID, originalID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockJournalRepo.AssertNotCalled(suite.T(), "SaveJournal", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JournalServiceTestSuite) TestReverseJournal_WrongCompany() {
	ctx := context.Background()
	originalID := uuid.NewString()
	original := domain.Journal{
		JournalID: originalID,
		CompanyID: uuid.NewString(),
		Status:    domain.Posted,
	}

	suite.mockCompanySvc.On("AuthorizeUserAction", mock.Anything, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockJournalRepo.On("FindJournalByID", ctx, originalID).Return(&original, nil).Once()

	_, err := suite.service.ReverseJournal(ctx, suite.companyID, originalID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}
