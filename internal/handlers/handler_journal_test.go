package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/makznkaljaafari/makhzan_ledger/internal/apperrors"
	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
	portssvc "github.com/makznkaljaafari/makhzan_ledger/internal/core/ports/services"
	"github.com/makznkaljaafari/makhzan_ledger/internal/dto"
	"github.com/makznkaljaafari/makhzan_ledger/internal/handlers"
	"github.com/makznkaljaafari/makhzan_ledger/internal/middleware"
	"github.com/makznkaljaafari/makhzan_ledger/internal/platform/config"
)

// --- Mock JournalService ---

type MockJournalService struct {
	mock.Mock
}

var _ portssvc.JournalSvcFacade = (*MockJournalService)(nil)

func (m *MockJournalService) PostJournal(ctx context.Context, companyID string, req dto.PostJournalRequest, creatorUserID string) (*domain.Journal, error) {
	args := m.Called(ctx, companyID, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalService) GetJournalByID(ctx context.Context, companyID string, journalID string, requestingUserID string) (*domain.Journal, error) {
	args := m.Called(ctx, companyID, journalID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalService) ListJournals(ctx context.Context, companyID string, userID string, params dto.ListJournalsParams) (*dto.ListJournalsResponse, error) {
	args := m.Called(ctx, companyID, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListJournalsResponse), args.Error(1)
}

func (m *MockJournalService) ReverseJournal(ctx context.Context, companyID string, journalID string, userID string) (*domain.Journal, error) {
	args := m.Called(ctx, companyID, journalID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Journal), args.Error(1)
}

func (m *MockJournalService) ListTransactionsByAccount(ctx context.Context, companyID string, accountID string, userID string, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	args := m.Called(ctx, companyID, accountID, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListTransactionsResponse), args.Error(1)
}

// --- Test Suite ---

type JournalHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockJournalService *MockJournalService
	companyID          string
	userID             string
}

func (suite *JournalHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()

	suite.mockJournalService = new(MockJournalService)
	container := &portssvc.ServiceContainer{
		Journal: suite.mockJournalService,
	}

	rate := limiter.Rate{Period: time.Minute, Limit: 1000}
	rateLimiter := limiter.New(memory.NewStore(), rate)

	handlers.RegisterRoutes(suite.router, &config.Config{}, container, rateLimiter)

	suite.companyID = uuid.NewString()
	suite.userID = uuid.NewString()
}

func (suite *JournalHandlerTestSuite) serve(req *http.Request) *httptest.ResponseRecorder {
	req.Header.Set(middleware.ActorHeader, suite.userID)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *JournalHandlerTestSuite) TestPostJournal_Success() {
	reqBody := dto.PostJournalRequest{
		Date:        time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Description: "Opening balances",
		Transactions: []dto.CreateTransactionRequest{
			{AccountID: uuid.NewString(), Amount: decimal.NewFromInt(500), TransactionType: domain.Debit},
			{AccountID: uuid.NewString(), Amount: decimal.NewFromInt(500), TransactionType: domain.Credit},
		},
	}
	journal := &domain.Journal{
		JournalID:    uuid.NewString(),
		CompanyID:    suite.companyID,
		EntryNumber:  "JE-000001",
		JournalDate:  reqBody.Date,
		Description:  reqBody.Description,
		CurrencyCode: "SAR",
		Status:       domain.Posted,
		Amount:       decimal.NewFromInt(500),
	}

	suite.mockJournalService.On("PostJournal",
		mock.Anything,
		suite.companyID,
		mock.MatchedBy(func(r dto.PostJournalRequest) bool {
			return len(r.Transactions) == 2 && r.Description == "Opening balances"
		}),
		suite.userID,
	).Return(journal, nil).Once()

	body, _ := json.Marshal(reqBody)
	url := fmt.Sprintf("/api/v1/companies/%s/journals", suite.companyID)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	w := suite.serve(req)

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.JournalResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(journal.JournalID, resp.JournalID)
	suite.Equal("JE-000001", resp.EntryNumber)
	suite.mockJournalService.AssertExpectations(suite.T())
}

func (suite *JournalHandlerTestSuite) TestPostJournal_Unbalanced() {
	reqBody := dto.PostJournalRequest{
		Date: time.Now(),
		Transactions: []dto.CreateTransactionRequest{
			{AccountID: uuid.NewString(), Amount: decimal.NewFromInt(500), TransactionType: domain.Debit},
			{AccountID: uuid.NewString(), Amount: decimal.NewFromInt(400), TransactionType: domain.Credit},
		},
	}

	suite.mockJournalService.On("PostJournal", mock.Anything, suite.companyID, mock.AnythingOfType("dto.PostJournalRequest"), suite.userID).
		Return(nil, apperrors.ErrUnbalancedEntry).Once()

	body, _ := json.Marshal(reqBody)
	url := fmt.Sprintf("/api/v1/companies/%s/journals", suite.companyID)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	w := suite.serve(req)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *JournalHandlerTestSuite) TestPostJournal_RejectsSingleLine() {
	// The binding rule requires at least two lines, so the service is never
	// reached.
	reqBody := dto.PostJournalRequest{
		Date: time.Now(),
		Transactions: []dto.CreateTransactionRequest{
			{AccountID: uuid.NewString(), Amount: decimal.NewFromInt(500), TransactionType: domain.Debit},
		},
	}

	body, _ := json.Marshal(reqBody)
	url := fmt.Sprintf("/api/v1/companies/%s/journals", suite.companyID)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	w := suite.serve(req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockJournalService.AssertNotCalled(suite.T(), "PostJournal")
}

func (suite *JournalHandlerTestSuite) TestPostJournal_MissingActorHeader() {
	url := fmt.Sprintf("/api/v1/companies/%s/journals", suite.companyID)
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewReader([]byte("{}")))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockJournalService.AssertNotCalled(suite.T(), "PostJournal")
}

func (suite *JournalHandlerTestSuite) TestReverseJournal_Success() {
	journalID := uuid.NewString()
	reversal := &domain.Journal{
		JournalID:         uuid.NewString(),
		CompanyID:         suite.companyID,
		EntryNumber:       "JE-000002",
		Status:            domain.Posted,
		OriginalJournalID: &journalID,
		Amount:            decimal.NewFromInt(500),
	}

	suite.mockJournalService.On("ReverseJournal", mock.Anything, suite.companyID, journalID, suite.userID).
		Return(reversal, nil).Once()

	url := fmt.Sprintf("/api/v1/companies/%s/journals/%s/reverse", suite.companyID, journalID)
	req, _ := http.NewRequest(http.MethodPost, url, nil)
	w := suite.serve(req)

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.JournalResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().NotNil(resp.OriginalJournalID)
	suite.Equal(journalID, *resp.OriginalJournalID)
	suite.mockJournalService.AssertExpectations(suite.T())
}

func (suite *JournalHandlerTestSuite) TestListAccountTransactions_Success() {
	accountID := uuid.NewString()
	expected := &dto.ListTransactionsResponse{
		Transactions: []dto.TransactionResponse{
			{TransactionID: uuid.NewString(), AccountID: accountID, Amount: decimal.NewFromInt(100), Type: string(domain.Debit)},
			{TransactionID: uuid.NewString(), AccountID: accountID, Amount: decimal.NewFromInt(50), Type: string(domain.Credit)},
		},
	}

	suite.mockJournalService.On("ListTransactionsByAccount",
		mock.Anything,
		suite.companyID,
		accountID,
		suite.userID,
		mock.MatchedBy(func(p dto.ListTransactionsParams) bool {
			return p.Limit == 10
		}),
	).Return(expected, nil).Once()

	url := fmt.Sprintf("/api/v1/companies/%s/accounts/%s/transactions?limit=10", suite.companyID, accountID)
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	w := suite.serve(req)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.ListTransactionsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Transactions, 2)
	suite.Equal(expected.Transactions[0].TransactionID, resp.Transactions[0].TransactionID)
	suite.mockJournalService.AssertExpectations(suite.T())
}

func TestJournalHandler(t *testing.T) {
	suite.Run(t, new(JournalHandlerTestSuite))
}
