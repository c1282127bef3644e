package pgsql

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/makznkaljaafari/makhzan_ledger/internal/apperrors"
	"github.com/makznkaljaafari/makhzan_ledger/internal/core/domain"
	portsrepo "github.com/makznkaljaafari/makhzan_ledger/internal/core/ports/repositories"
	"github.com/makznkaljaafari/makhzan_ledger/internal/models"
)

type PgxCompanyRepository struct {
	BaseRepository
}

// newPgxCompanyRepository creates a new repository for companies and
// memberships.
func newPgxCompanyRepository(pool *pgxpool.Pool) portsrepo.CompanyRepositoryFacade {
	return &PgxCompanyRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.CompanyRepositoryFacade = (*PgxCompanyRepository)(nil)

func toDomainCompany(m models.Company) domain.Company {
	return domain.Company{
		CompanyID:        m.CompanyID,
		Name:             m.Name,
		BaseCurrencyCode: m.BaseCurrencyCode,
		VATEnabled:       m.VATEnabled,
		VATRate:          m.VATRate,
		DefaultAccounts: domain.DefaultAccounts{
			AccountsReceivable: m.DefaultAccounts.AccountsReceivable,
			AccountsPayable:    m.DefaultAccounts.AccountsPayable,
			Sales:              m.DefaultAccounts.Sales,
			SalesReturn:        m.DefaultAccounts.SalesReturn,
			COGS:               m.DefaultAccounts.COGS,
			Inventory:          m.DefaultAccounts.Inventory,
			VATPayable:         m.DefaultAccounts.VATPayable,
			VATReceivable:      m.DefaultAccounts.VATReceivable,
		},
		AllowNegativeStock: m.AllowNegativeStock,
		IsActive:           m.IsActive,
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

func defaultAccountsJSON(d domain.DefaultAccounts) ([]byte, error) {
	return json.Marshal(models.DefaultAccounts{
		AccountsReceivable: d.AccountsReceivable,
		AccountsPayable:    d.AccountsPayable,
		Sales:              d.Sales,
		SalesReturn:        d.SalesReturn,
		COGS:               d.COGS,
		Inventory:          d.Inventory,
		VATPayable:         d.VATPayable,
		VATReceivable:      d.VATReceivable,
	})
}

const companyColumns = `company_id, name, base_currency_code, vat_enabled, vat_rate, default_accounts, allow_negative_stock, is_active, created_at, created_by, last_updated_at, last_updated_by`

func scanCompany(row pgx.Row) (models.Company, error) {
	var m models.Company
	var defaultAccounts []byte
	err := row.Scan(
		&m.CompanyID,
		&m.Name,
		&m.BaseCurrencyCode,
		&m.VATEnabled,
		&m.VATRate,
		&defaultAccounts,
		&m.AllowNegativeStock,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return models.Company{}, err
	}
	if len(defaultAccounts) > 0 {
		if err := json.Unmarshal(defaultAccounts, &m.DefaultAccounts); err != nil {
			return models.Company{}, err
		}
	}
	return m, nil
}

func (r *PgxCompanyRepository) SaveCompany(ctx context.Context, company domain.Company) error {
	accountsJSON, err := defaultAccountsJSON(company.DefaultAccounts)
	if err != nil {
		return apperrors.NewAppError(500, "failed to serialize default accounts for company "+company.CompanyID, err)
	}
	query := `
		INSERT INTO companies (` + companyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err = r.Pool.Exec(ctx, query,
		company.CompanyID,
		company.Name,
		company.BaseCurrencyCode,
		company.VATEnabled,
		company.VATRate,
		accountsJSON,
		company.AllowNegativeStock,
		company.IsActive,
		company.CreatedAt,
		company.CreatedBy,
		company.LastUpdatedAt,
		company.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" {
				return apperrors.ErrDuplicate
			}
			if pgErr.Code == "23503" {
				return apperrors.ErrValidation
			}
		}
		return apperrors.NewAppError(500, "failed to save company "+company.CompanyID, err)
	}
	return nil
}

func (r *PgxCompanyRepository) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE company_id = $1;`
	m, err := scanCompany(r.Pool.QueryRow(ctx, query, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find company by ID "+companyID, err)
	}
	c := toDomainCompany(m)
	return &c, nil
}

func (r *PgxCompanyRepository) ListCompaniesByUserID(ctx context.Context, userID string) ([]domain.Company, error) {
	query := `
		SELECT c.company_id, c.name, c.base_currency_code, c.vat_enabled, c.vat_rate,
		       c.default_accounts, c.allow_negative_stock, c.is_active,
		       c.created_at, c.created_by, c.last_updated_at, c.last_updated_by
		FROM companies c
		JOIN user_companies uc ON c.company_id = uc.company_id
		WHERE uc.user_id = $1 AND c.is_active = TRUE
		ORDER BY c.name;
	`
	rows, err := r.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to list companies for user "+userID, err)
	}
	defer rows.Close()

	companies := []domain.Company{}
	for rows.Next() {
		m, scanErr := scanCompany(rows)
		if scanErr != nil {
			return nil, apperrors.NewAppError(500, "failed to scan company row", scanErr)
		}
		companies = append(companies, toDomainCompany(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating company rows", err)
	}
	return companies, nil
}

func (r *PgxCompanyRepository) UpdateCompany(ctx context.Context, company domain.Company) error {
	accountsJSON, err := defaultAccountsJSON(company.DefaultAccounts)
	if err != nil {
		return apperrors.NewAppError(500, "failed to serialize default accounts for company "+company.CompanyID, err)
	}
	query := `
		UPDATE companies
		SET name = $2,
		    vat_enabled = $3,
		    vat_rate = $4,
		    default_accounts = $5,
		    allow_negative_stock = $6,
		    is_active = $7,
		    last_updated_at = $8,
		    last_updated_by = $9
		WHERE company_id = $1;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		company.CompanyID,
		company.Name,
		company.VATEnabled,
		company.VATRate,
		accountsJSON,
		company.AllowNegativeStock,
		company.IsActive,
		company.LastUpdatedAt,
		company.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update company "+company.CompanyID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// AddUserToCompany upserts a membership: adding an existing member updates
// their role instead of failing.
func (r *PgxCompanyRepository) AddUserToCompany(ctx context.Context, membership domain.UserCompany) error {
	query := `
		INSERT INTO user_companies (user_id, company_id, role, joined_at, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, company_id) DO UPDATE
		SET role = EXCLUDED.role,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.Pool.Exec(ctx, query,
		membership.UserID,
		membership.CompanyID,
		membership.Role,
		membership.CreatedAt,
		membership.CreatedAt,
		membership.CreatedBy,
		membership.LastUpdatedAt,
		membership.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to add user "+membership.UserID+" to company "+membership.CompanyID, err)
	}
	return nil
}

func (r *PgxCompanyRepository) FindUserCompanyRole(ctx context.Context, userID, companyID string) (*domain.UserCompany, error) {
	query := `
		SELECT user_id, company_id, role, created_at, created_by, last_updated_at, last_updated_by
		FROM user_companies
		WHERE user_id = $1 AND company_id = $2;
	`
	var m models.UserCompany
	err := r.Pool.QueryRow(ctx, query, userID, companyID).Scan(
		&m.UserID,
		&m.CompanyID,
		&m.Role,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find role for user "+userID+" in company "+companyID, err)
	}
	return &domain.UserCompany{
		UserID:    m.UserID,
		CompanyID: m.CompanyID,
		Role:      domain.UserCompanyRole(m.Role),
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}, nil
}
