package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/makznkaljaafari/makhzan_ledger/internal/apperrors"
	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
	portsrepo "github.com/makznkaljaafari/makhzan_ledger/internal/core/ports/repositories"
)

type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new repository backing the reporting
// queries.
func newReportingRepository(pool *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

// GetTrialBalanceData returns the accounts of a company with their stored
// running balances. The trial balance is derived from the balances the
// posting path maintains, so it reflects exactly what has been posted.
func (r *reportingRepository) GetTrialBalanceData(ctx context.Context, companyID string) ([]domain.Account, error) {
	query := `
		SELECT account_id, name, account_type, balance
		FROM accounts
		WHERE company_id = $1 AND is_active = TRUE
		ORDER BY name;
	`
	rows, err := r.Pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query trial balance data for company "+companyID, err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		var acc domain.Account
		var accountType string
		if err := rows.Scan(&acc.AccountID, &acc.Name, &accountType, &acc.Balance); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan trial balance row", err)
		}
		acc.AccountType = domain.AccountType(accountType)
		acc.CompanyID = companyID
		accounts = append(accounts, acc)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating trial balance rows", err)
	}
	return accounts, nil
}
