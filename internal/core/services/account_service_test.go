package services_test

import (
	"context"
	"testing"

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

type AccountServiceTestSuite struct {
	suite.Suite
	mockAccountRepo *MockAccountRepository
	mockCompanySvc  *MockCompanyService
	service         portssvc.AccountSvcFacade
	companyID       string
	userID          string
}

func (suite *AccountServiceTestSuite) SetupTest() {
	suite.mockAccountRepo = new(MockAccountRepository)
	suite.mockCompanySvc = new(MockCompanyService)
	suite.service = services.NewAccountService(suite.mockAccountRepo, suite.mockCompanySvc)

	suite.companyID = uuid.NewString()
	suite.userID = uuid.NewString()
}

func (suite *AccountServiceTestSuite) existingAccount() *domain.Account {
	return &domain.Account{
		AccountID:   uuid.NewString(),
		CompanyID:   suite.companyID,
		Name:        "Cash",
		AccountType: domain.Asset,
		IsActive:    true,
		Balance:     decimal.Zero,
	}
}

func (suite *AccountServiceTestSuite) TestCreateAccount_Success() {
	ctx := context.Background()
	req := dto.CreateAccountRequest{Name: "Accounts Receivable", AccountType: domain.Asset}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()

	var saved domain.Account
	suite.mockAccountRepo.On("SaveAccount", ctx, mock.AnythingOfType("domain.Account")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.Account)
		}).Return(nil).Once()

	account, err := suite.service.CreateAccount(ctx, suite.companyID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("Accounts Receivable", account.Name)
	suite.Equal(suite.companyID, account.CompanyID)
	suite.True(account.IsActive)
	suite.True(account.Balance.IsZero())
	suite.Equal(suite.userID, saved.CreatedBy)
	suite.NotEmpty(saved.AccountID)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestCreateAccount_ParentInOtherCompany() {
	ctx := context.Background()
	parent := suite.existingAccount()
	parent.CompanyID = uuid.NewString()
	req := dto.CreateAccountRequest{Name: "Petty Cash", AccountType: domain.Asset, ParentAccountID: &parent.AccountID}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, parent.AccountID).Return(parent, nil).Once()

	account, err := suite.service.CreateAccount(ctx, suite.companyID, req, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(account)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "SaveAccount")
}

func (suite *AccountServiceTestSuite) TestGetAccountByID_ScopedToCompany() {
	ctx := context.Background()
	account := suite.existingAccount()
	account.CompanyID = uuid.NewString()

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()

	got, err := suite.service.GetAccountByID(ctx, suite.companyID, account.AccountID, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(got)
}

func (suite *AccountServiceTestSuite) TestGetAccountByIDs_FiltersForeignAccounts() {
	ctx := context.Background()
	mine := suite.existingAccount()
	other := suite.existingAccount()
	other.CompanyID = uuid.NewString()
	ids := []string{mine.AccountID, other.AccountID}

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockAccountRepo.On("FindAccountsByIDs", ctx, ids).Return(map[string]domain.Account{
		mine.AccountID:  *mine,
		other.AccountID: *other,
	}, nil).Once()

	accounts, err := suite.service.GetAccountByIDs(ctx, suite.companyID, ids, suite.userID)

	suite.Require().NoError(err)
	suite.Len(accounts, 1)
	suite.Contains(accounts, mine.AccountID)
}

func (suite *AccountServiceTestSuite) TestListAccounts_DefaultsPagination() {
	ctx := context.Background()

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockAccountRepo.On("ListAccounts", ctx, suite.companyID, 20, 0).Return([]domain.Account{}, nil).Once()

	accounts, err := suite.service.ListAccounts(ctx, suite.companyID, suite.userID, -5, -1)

	suite.Require().NoError(err)
	suite.NotNil(accounts)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_NoChangesSkipsWrite() {
	ctx := context.Background()
	account := suite.existingAccount()

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()

	got, err := suite.service.UpdateAccount(ctx, suite.companyID, account.AccountID, dto.UpdateAccountRequest{}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(account.AccountID, got.AccountID)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "UpdateAccount")
}

func (suite *AccountServiceTestSuite) TestUpdateAccount_RenamesAccount() {
	ctx := context.Background()
	account := suite.existingAccount()
	newName := "Cash on Hand"

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleMember).Return(nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()
	suite.mockAccountRepo.On("UpdateAccount", ctx, mock.AnythingOfType("domain.Account")).Return(nil).Once()

	got, err := suite.service.UpdateAccount(ctx, suite.companyID, account.AccountID, dto.UpdateAccountRequest{Name: &newName}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(newName, got.Name)
	suite.Equal(suite.userID, got.LastUpdatedBy)
	suite.mockAccountRepo.AssertExpectations(suite.T())
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_RequiresAdmin() {
	ctx := context.Background()
	account := suite.existingAccount()

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleAdmin).Return(apperrors.ErrForbidden).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()

	err := suite.service.DeactivateAccount(ctx, suite.companyID, account.AccountID, suite.userID)

	suite.Require().ErrorIs(err, apperrors.ErrForbidden)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "DeactivateAccount")
}

func (suite *AccountServiceTestSuite) TestDeactivateAccount_AlreadyInactive() {
	ctx := context.Background()
	account := suite.existingAccount()
	account.IsActive = false

	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleReadOnly).Return(nil).Once()
	suite.mockCompanySvc.On("AuthorizeUserAction", ctx, suite.userID, suite.companyID, domain.RoleAdmin).Return(nil).Once()
	suite.mockAccountRepo.On("FindAccountByID", ctx, account.AccountID).Return(account, nil).Once()

	err := suite.service.DeactivateAccount(ctx, suite.companyID, account.AccountID, suite.userID)

	suite.Require().NoError(err)
	suite.mockAccountRepo.AssertNotCalled(suite.T(), "DeactivateAccount")
}

func TestAccountServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AccountServiceTestSuite))
}
