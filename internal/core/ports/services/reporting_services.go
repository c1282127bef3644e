package services

import (
	"context"

	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
)

type ReportingSvcFacade interface {
	// GetTrialBalance lists every active account with its balance split into
	// debit and credit columns by the account's natural sign. Totals of the
	// two columns are equal whenever only balanced journals have posted.
	GetTrialBalance(ctx context.Context, companyID string, userID string) (*domain.TrialBalance, error)
}
