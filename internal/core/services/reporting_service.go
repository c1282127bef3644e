package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
	portsrepo "github.com/makznkaljaafari/makhzan_ledger/internal/core/ports/repositories"
	portssvc "github.com/makznkaljaafari/makhzan_ledger/internal/core/ports/services"
	"github.com/makznkaljaafari/makhzan_ledger/internal/middleware"
)

// reportingService builds financial reports from ledger state.
type reportingService struct {
	reportingRepo portsrepo.ReportingRepository
	companySvc    portssvc.CompanyAuthorizerSvc
}

// NewReportingService creates a new ReportingService.
func NewReportingService(rr portsrepo.ReportingRepository, companySvc portssvc.CompanyAuthorizerSvc) portssvc.ReportingSvcFacade {
	return &reportingService{
		reportingRepo: rr,
		companySvc:    companySvc,
	}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// GetTrialBalance lists every active account with its running balance split
// into debit and credit columns by the account's natural sign. A balance
// with the opposite sign of its account's natural side lands in the other
// column, so both totals stay non-negative.
func (s *reportingService) GetTrialBalance(ctx context.Context, companyID string, userID string) (*domain.TrialBalance, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if err := s.companySvc.AuthorizeUserAction(ctx, userID, companyID, domain.RoleReadOnly); err != nil {
		logger.Warn("Authorization failed for GetTrialBalance", slog.String("user_id", userID), slog.String("company_id", companyID), slog.String("error", err.Error()))
		return nil, err
	}

	accounts, err := s.reportingRepo.GetTrialBalanceData(ctx, companyID)
	if err != nil {
		logger.Error("Failed to fetch trial balance data", slog.String("error", err.Error()), slog.String("company_id", companyID))
		return nil, fmt.Errorf("failed to fetch trial balance data: %w", err)
	}

	tb := &domain.TrialBalance{
		Rows:        make([]domain.TrialBalanceRow, 0, len(accounts)),
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}

	for _, acc := range accounts {
		row := domain.TrialBalanceRow{
			AccountID:   acc.AccountID,
			AccountName: acc.Name,
			AccountType: acc.AccountType,
			Debit:       decimal.Zero,
			Credit:      decimal.Zero,
		}

		debitNatural := acc.AccountType.NaturalSign() > 0
		switch {
		case acc.Balance.IsZero():
			// Zero rows stay in the report with both columns empty.
		case acc.Balance.IsPositive() == debitNatural:
			row.Debit = acc.Balance.Abs()
		default:
			row.Credit = acc.Balance.Abs()
		}

		tb.TotalDebit = tb.TotalDebit.Add(row.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(row.Credit)
		tb.Rows = append(tb.Rows, row)
	}

	logger.Debug("Trial balance built", slog.String("company_id", companyID), slog.Int("rows", len(tb.Rows)), slog.String("total_debit", tb.TotalDebit.String()), slog.String("total_credit", tb.TotalCredit.String()))
	return tb, nil
}
