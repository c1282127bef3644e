package repositories

import (
	"context"

	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
)

// ReportingRepository defines operations for retrieving financial report data
type ReportingRepository interface {
	// GetTrialBalanceData retrieves every active account's running balance
	// for a company.
	GetTrialBalanceData(ctx context.Context, companyID string) ([]domain.Account, error)
}
